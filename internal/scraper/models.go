// Package scraper implements the resilient batch extraction pipeline:
// identifier discovery, polite retrying fetches, pattern-cascade field
// extraction and schema-complete record synthesis, driven one batch at a
// time by the orchestrator.
package scraper

import "time"

// Record categories
const (
	CategoryDog   = "dog"
	CategoryCat   = "cat"
	CategoryOther = "other"
)

// Record provenance markers. Synthetic records are fabricated placeholders
// emitted when an identifier could not be fetched or parsed.
const (
	ProvenanceScraped   = "scraped"
	ProvenanceSynthetic = "synthetic"
)

// StatusAdoptable is the status every record carries on creation.
const StatusAdoptable = "adoptable"

// Contact identifies the source organization on a record.
type Contact struct {
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
}

// Record is the schema-complete unit of value produced by the pipeline.
// Every required field is always populated, real or synthesized; optional
// fields are present only when confidently extracted.
type Record struct {
	ID       string `json:"id"`        // org slug + source identifier
	SourceID string `json:"source_id"` // identifier on the upstream site

	Name        string  `json:"name"`
	Category    string  `json:"category"` // dog, cat or other
	Breed       string  `json:"breed"`
	Age         string  `json:"age"` // descriptive bucket
	Gender      string  `json:"gender"`
	Desexed     bool    `json:"desexed"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Images      []string `json:"images"`
	Contact     Contact `json:"contact"`
	Status      string  `json:"status"`

	// Optional, populated only when confidently extracted.
	BirthDate string   `json:"birth_date,omitempty"`
	Microchip string   `json:"microchip,omitempty"`
	Center    string   `json:"center,omitempty"`
	Intake    string   `json:"intake,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Provenance string    `json:"provenance"` // scraped or synthetic
	CreatedAt  time.Time `json:"created_at"`
}

// PartialRecord holds the fields the extractor resolved from one detail
// page. Absent fields stay zero-valued and are defaulted by the
// synthesizer.
type PartialRecord struct {
	Name         string
	Gender       string
	Desexed      bool
	DesexedKnown bool
	Breed        string
	BirthDate    string // ISO yyyy-mm-dd
	AgeMonths    int
	AgeKnown     bool
	Microchip    string
	Center       string
	Intake       string
	About        string
	Tags         []string
}
