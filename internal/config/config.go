// Package config provides configuration management for the scrape pipeline.
// It defines configuration structures and default values for politeness,
// batching, extraction and persistence parameters.
package config

import (
	"strings"
	"time"
)

// Contact identifies the source organization on every emitted record.
type Contact struct {
	Organization string `mapstructure:"organization" yaml:"organization"` // Display name of the shelter
	Phone        string `mapstructure:"phone" yaml:"phone"`               // Public phone number
	Email        string `mapstructure:"email" yaml:"email"`               // Public email address
	Address      string `mapstructure:"address" yaml:"address"`           // Street address of the main centre
}

// ScrapeConfig holds pipeline configuration
type ScrapeConfig struct {
	// Upstream source
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`         // Scheme+host of the shelter site
	ListingPath string `mapstructure:"listing_path" yaml:"listing_path"` // Path of the adoption listing page
	DetailPath  string `mapstructure:"detail_path" yaml:"detail_path"`   // Detail page path template, %s = identifier
	OrgSlug     string `mapstructure:"org_slug" yaml:"org_slug"`         // Short source token used in record IDs

	// Politeness
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // Delay between detail-page fetches
	BatchDelay     time.Duration `mapstructure:"batch_delay" yaml:"batch_delay"`         // Delay between batches in run mode
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per-attempt HTTP timeout
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`   // Whether to honor robots.txt

	// Fetch retry behaviour
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`           // Attempts per URL before giving up
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" yaml:"retry_base_delay"` // Backoff unit, attempt N waits N*base
	MinBodyBytes   int           `mapstructure:"min_body_bytes" yaml:"min_body_bytes"`     // Bodies shorter than this are soft failures

	// Batching
	BatchSize  int           `mapstructure:"batch_size" yaml:"batch_size"`   // Identifiers processed per batch call
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"` // Session is rebuilt after this elapses

	// Discovery fallbacks
	SeedIdentifiers []string `mapstructure:"seed_identifiers" yaml:"seed_identifiers"` // Known-valid identifiers for fallback

	// Extraction
	MaxImages int     `mapstructure:"max_images" yaml:"max_images"` // Cap on images kept per record
	Contact   Contact `mapstructure:"contact" yaml:"contact"`       // Contact block stamped onto records

	// Persistence and serving
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"` // Path to SQLite database file
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr"`     // Address for the HTTP interface
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *ScrapeConfig {
	return &ScrapeConfig{
		BaseURL:         "https://www.pawshaven.org",
		ListingPath:     "/en/adoption/adopt-now",
		DetailPath:      "/en/pet/%s",
		OrgSlug:         "pawshaven",
		RequestDelay:    1 * time.Second,
		BatchDelay:      5 * time.Second,
		RequestTimeout:  25 * time.Second,
		UserAgent:       "PetCrawl/1.0",
		RespectRobots:   true,
		MaxRetries:      3,
		RetryBaseDelay:  2 * time.Second,
		MinBodyBytes:    500,
		BatchSize:       10,
		SessionTTL:      30 * time.Minute,
		SeedIdentifiers: []string{"467812", "467945", "468103"},
		MaxImages:       5,
		Contact: Contact{
			Organization: "Paws Haven Animal Welfare",
			Phone:        "+852 2802 0501",
			Email:        "adoption@pawshaven.org",
			Address:      "5 Harbourside Road, Wan Chai",
		},
		DatabasePath: "./petcrawl.db",
		ListenAddr:   ":8090",
	}
}

// DetailURL builds the absolute detail-page URL for an identifier.
func (c *ScrapeConfig) DetailURL(identifier string) string {
	path := strings.Replace(c.DetailPath, "%s", identifier, 1)
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

// ListingURL builds the absolute listing-page URL.
func (c *ScrapeConfig) ListingURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ListingPath
}

// Validate checks if the configuration is valid
func (c *ScrapeConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}

	if !strings.Contains(c.DetailPath, "%s") {
		return ErrInvalidDetailPath
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries <= 0 {
		return ErrInvalidRetries
	}

	if c.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}

	// The upstream source blocks bursty clients; never pace faster than this.
	if c.RequestDelay < 200*time.Millisecond {
		c.RequestDelay = 200 * time.Millisecond
	}

	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}

	if c.MaxImages <= 0 {
		c.MaxImages = 5
	}

	return nil
}
