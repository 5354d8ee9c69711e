// Package storage provides durable persistence for scraped records.
// It implements the scraper.Store interface over SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hclam/petcrawl/internal/scraper"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// PetStore implements scraper.Store using SQLite
type PetStore struct {
	db *sql.DB
}

var _ scraper.Store = (*PetStore)(nil)

// NewPetStore opens (or creates) the store at dbPath. An unreadable
// existing file is moved aside and replaced with a fresh empty store:
// store corruption is logged, never fatal.
func NewPetStore(dbPath string) (*PetStore, error) {
	store, err := open(dbPath)
	if err == nil {
		return store, nil
	}

	backup := dbPath + ".corrupt"
	slog.Warn("Store unreadable, starting empty", "path", dbPath, "backup", backup, "error", err)
	if renameErr := os.Rename(dbPath, backup); renameErr != nil && !os.IsNotExist(renameErr) {
		return nil, fmt.Errorf("failed to move corrupt store aside: %w", renameErr)
	}

	return open(dbPath)
}

func open(dbPath string) (*PetStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts; the pipeline is a
	// single writer by contract anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &PetStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PetStore) initSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *PetStore) Close() error {
	return s.db.Close()
}

// Merge appends records whose id is not already present. Existing rows
// are never mutated; merging the same batch twice is a no-op. It returns
// the store total after the merge and how many rows were added.
func (s *PetStore) Merge(records []scraper.Record) (total, added int, err error) {
	if len(records) > 0 {
		tx, err := s.db.Begin()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO pets (
				id, source_id, name, category, breed, age, gender, desexed,
				description, image_url, images, tags, birth_date, microchip,
				center, intake, contact_organization, contact_phone,
				contact_email, contact_address, status, provenance, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range records {
			imagesJSON, err := json.Marshal(rec.Images)
			if err != nil {
				return 0, 0, fmt.Errorf("failed to marshal images for %s: %w", rec.ID, err)
			}
			var tagsJSON []byte
			if len(rec.Tags) > 0 {
				if tagsJSON, err = json.Marshal(rec.Tags); err != nil {
					return 0, 0, fmt.Errorf("failed to marshal tags for %s: %w", rec.ID, err)
				}
			}

			res, err := stmt.Exec(
				rec.ID, rec.SourceID, rec.Name, rec.Category, rec.Breed,
				rec.Age, rec.Gender, rec.Desexed, rec.Description,
				rec.ImageURL, string(imagesJSON), nullable(string(tagsJSON)),
				nullable(rec.BirthDate), nullable(rec.Microchip),
				nullable(rec.Center), nullable(rec.Intake),
				rec.Contact.Organization, rec.Contact.Phone,
				rec.Contact.Email, rec.Contact.Address,
				rec.Status, rec.Provenance, rec.CreatedAt,
			)
			if err != nil {
				return 0, 0, fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}

		if err := tx.Commit(); err != nil {
			return 0, 0, fmt.Errorf("failed to commit merge: %w", err)
		}
	}

	total, err = s.Count()
	if err != nil {
		return 0, added, err
	}
	return total, added, nil
}

// GetAll returns every stored record in insertion order.
func (s *PetStore) GetAll() ([]scraper.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, source_id, name, category, breed, age, gender, desexed,
		       description, image_url, images, tags, birth_date, microchip,
		       center, intake, contact_organization, contact_phone,
		       contact_email, contact_address, status, provenance, created_at
		FROM pets
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []scraper.Record
	for rows.Next() {
		var rec scraper.Record
		var imagesJSON string
		var tagsJSON, birthDate, microchip, center, intake sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.SourceID, &rec.Name, &rec.Category, &rec.Breed,
			&rec.Age, &rec.Gender, &rec.Desexed, &rec.Description,
			&rec.ImageURL, &imagesJSON, &tagsJSON, &birthDate, &microchip,
			&center, &intake, &rec.Contact.Organization, &rec.Contact.Phone,
			&rec.Contact.Email, &rec.Contact.Address,
			&rec.Status, &rec.Provenance, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if err := json.Unmarshal([]byte(imagesJSON), &rec.Images); err != nil {
			slog.Warn("Malformed images column, skipping value", "id", rec.ID, "error", err)
		}
		if tagsJSON.Valid {
			if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
				slog.Warn("Malformed tags column, skipping value", "id", rec.ID, "error", err)
			}
		}
		rec.BirthDate = birthDate.String
		rec.Microchip = microchip.String
		rec.Center = center.String
		rec.Intake = intake.String

		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the current total without merging.
func (s *PetStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pets").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
