package scraper

import (
	"time"

	"github.com/google/uuid"
)

// Session is the in-memory, process-lifetime state of one discovery and
// batching run. It is never persisted; a process restart or an explicit
// reset discards it, and a stale session is silently rebuilt on the next
// batch request.
type Session struct {
	ID            string
	Identifiers   []string        // discovery order, unique
	ProcessedURLs map[string]bool // URLs already attempted, success or not
	BatchIndex    int             // only ever increases
	TotalBatches  int
	BatchSize     int
	InitializedAt time.Time
	TTL           time.Duration
}

func newSession(identifiers []string, batchSize int, ttl time.Duration, now time.Time) *Session {
	total := (len(identifiers) + batchSize - 1) / batchSize

	return &Session{
		ID:            uuid.NewString(),
		Identifiers:   identifiers,
		ProcessedURLs: make(map[string]bool),
		TotalBatches:  total,
		BatchSize:     batchSize,
		InitializedAt: now,
		TTL:           ttl,
	}
}

// Stale reports whether the session has outlived its TTL.
func (s *Session) Stale(now time.Time) bool {
	return now.Sub(s.InitializedAt) > s.TTL
}

// Exhausted reports whether every batch has been processed.
func (s *Session) Exhausted() bool {
	return s.BatchIndex >= s.TotalBatches
}

// NextSlice returns the identifiers of the upcoming batch.
func (s *Session) NextSlice() []string {
	start := s.BatchIndex * s.BatchSize
	if start >= len(s.Identifiers) {
		return nil
	}
	end := start + s.BatchSize
	if end > len(s.Identifiers) {
		end = len(s.Identifiers)
	}
	return s.Identifiers[start:end]
}
