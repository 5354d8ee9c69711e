package config

import "errors"

var (
	// ErrEmptyBaseURL is returned when no upstream base URL is configured
	ErrEmptyBaseURL = errors.New("base_url cannot be empty")
	// ErrInvalidDetailPath is returned when the detail path template lacks the %s placeholder
	ErrInvalidDetailPath = errors.New("detail_path must contain a %s identifier placeholder")
	// ErrInvalidBatchSize is returned when batch size is not greater than 0
	ErrInvalidBatchSize = errors.New("batch_size must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidRetries is returned when max retries is not greater than 0
	ErrInvalidRetries = errors.New("max_retries must be greater than 0")
	// ErrEmptyDatabasePath is returned when database path is empty
	ErrEmptyDatabasePath = errors.New("database_path cannot be empty")
)
