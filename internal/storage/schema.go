package storage

const schemaSQL = `
-- One row per record, keyed by the source-derived id. Merging is
-- append-only: INSERT OR IGNORE never mutates or removes existing rows.
CREATE TABLE IF NOT EXISTS pets (
    id TEXT PRIMARY KEY NOT NULL,
    source_id TEXT NOT NULL,
    name TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('dog', 'cat', 'other')),
    breed TEXT NOT NULL,
    age TEXT NOT NULL,
    gender TEXT NOT NULL,
    desexed INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL,
    image_url TEXT NOT NULL,
    images TEXT NOT NULL,          -- JSON array
    tags TEXT,                     -- JSON array, NULL when none
    birth_date TEXT,
    microchip TEXT,
    center TEXT,
    intake TEXT,
    contact_organization TEXT NOT NULL,
    contact_phone TEXT,
    contact_email TEXT,
    contact_address TEXT,
    status TEXT NOT NULL DEFAULT 'adoptable',
    provenance TEXT NOT NULL CHECK (provenance IN ('scraped', 'synthetic')),
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pets_category ON pets(category);
CREATE INDEX IF NOT EXISTS idx_pets_provenance ON pets(provenance);
CREATE INDEX IF NOT EXISTS idx_pets_created ON pets(created_at);
`
