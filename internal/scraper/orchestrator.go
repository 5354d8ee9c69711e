package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/hclam/petcrawl/internal/config"
)

// Store persists records durably across restarts, deduplicating by record
// ID. Merging never removes or mutates existing records.
type Store interface {
	Merge(records []Record) (total, added int, err error)
	GetAll() ([]Record, error)
	Count() (int, error)
}

// BatchProgress reports where a session stands after a batch call.
type BatchProgress struct {
	SessionID      string `json:"session_id"`
	CurrentBatch   int    `json:"current_batch"`
	TotalBatches   int    `json:"total_batches"`
	ProcessedCount int    `json:"processed_count"`
	TotalAvailable int    `json:"total_available"`
	HasMore        bool   `json:"has_more"`
	Message        string `json:"message,omitempty"`
}

// BatchResult is the outcome of one batch invocation.
type BatchResult struct {
	Records    []Record      `json:"records"`
	Progress   BatchProgress `json:"progress"`
	Scraped    int           `json:"scraped"`
	Synthetic  int           `json:"synthetic"`
	StoreTotal int           `json:"store_total"`
}

// Status is a read-only snapshot of the session for the surrounding
// application.
type Status struct {
	Initialized    bool   `json:"initialized"`
	SessionID      string `json:"session_id,omitempty"`
	CurrentBatch   int    `json:"current_batch"`
	TotalBatches   int    `json:"total_batches"`
	ProcessedCount int    `json:"processed_count"`
	TotalAvailable int    `json:"total_available"`
	HasMoreData    bool   `json:"has_more_data"`
	NextBatchSize  int    `json:"next_batch_size"`
	StoredRecords  int    `json:"stored_records"`
	ScrapedCount   int    `json:"scraped_count"`
	SyntheticCount int    `json:"synthetic_count"`
}

// Orchestrator owns the crawl session and drives one batch per
// invocation. Items are processed strictly one at a time with paced
// delays; per-item failures degrade to synthetic records and never abort
// the batch. Callers must not issue concurrent batch calls; the internal
// mutex serializes them defensively but the contract is one in flight.
type Orchestrator struct {
	cfg        *config.ScrapeConfig
	fetcher    *Fetcher
	pacer      *Pacer
	robots     *RobotsGate
	discoverer *Discoverer
	extractor  *Extractor
	synth      *Synthesizer
	mock       *MockGenerator
	store      Store

	mu        sync.Mutex
	session   *Session
	scraped   int
	synthetic int
	now       func() time.Time
}

// NewOrchestrator wires the pipeline components from configuration.
func NewOrchestrator(cfg *config.ScrapeConfig, store Store) *Orchestrator {
	fetcher := NewFetcher(FetcherOptions{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.MaxRetries,
		BaseDelay:    cfg.RetryBaseDelay,
		MinBodyBytes: cfg.MinBodyBytes,
	})

	contact := Contact{
		Organization: cfg.Contact.Organization,
		Phone:        cfg.Contact.Phone,
		Email:        cfg.Contact.Email,
		Address:      cfg.Contact.Address,
	}

	return &Orchestrator{
		cfg:        cfg,
		fetcher:    fetcher,
		pacer:      NewPacer(cfg.RequestDelay),
		robots:     NewRobotsGate(fetcher, cfg.RespectRobots),
		discoverer: NewDiscoverer(fetcher, cfg.ListingURL(), cfg.DetailPath, cfg.SeedIdentifiers),
		extractor:  NewExtractor(ExtractorOptions{OrgName: cfg.Contact.Organization}),
		synth:      NewSynthesizer(cfg.OrgSlug, contact),
		mock:       NewMockGenerator(cfg.OrgSlug, contact),
		store:      store,
		now:        time.Now,
	}
}

// NextBatch drives one state-machine step: it lazily (re)initializes the
// session, processes the next slice of identifiers, merges the records
// into the store and advances the cursor. An exhausted session returns an
// empty result with an explanatory message and fetches nothing.
func (o *Orchestrator) NextBatch(ctx context.Context) (*BatchResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if o.session == nil || o.session.Stale(o.now()) {
		ids := o.discoverer.Discover(ctx)
		if len(ids) == 0 {
			// All three discovery tiers empty. Report no work rather than
			// failing; the emergency tier makes this unreachable in practice.
			return &BatchResult{
				Records:  []Record{},
				Progress: BatchProgress{Message: "no work available"},
			}, nil
		}
		o.session = newSession(ids, o.cfg.BatchSize, o.cfg.SessionTTL, o.now())
		o.scraped, o.synthetic = 0, 0
		slog.Info("Session initialized", "session_id", o.session.ID,
			"identifiers", len(ids), "batches", o.session.TotalBatches)
	}

	s := o.session
	if s.Exhausted() {
		return &BatchResult{
			Records:  []Record{},
			Progress: o.progress("already complete"),
		}, nil
	}

	records := []Record{}
	batchScraped, batchSynthetic := 0, 0
	for _, id := range s.NextSlice() {
		detailURL := o.cfg.DetailURL(id)
		if s.ProcessedURLs[detailURL] {
			continue
		}

		rec := o.processItem(ctx, id, detailURL)
		s.ProcessedURLs[detailURL] = true

		if rec.Provenance == ProvenanceSynthetic {
			batchSynthetic++
		} else {
			batchScraped++
		}
		records = append(records, rec)
	}
	s.BatchIndex++
	o.scraped += batchScraped
	o.synthetic += batchSynthetic

	total, added, err := o.store.Merge(records)
	if err != nil {
		slog.Error("Failed to merge batch into store", "error", err)
	}

	slog.Info("Batch complete", "session_id", s.ID, "batch", s.BatchIndex,
		"total_batches", s.TotalBatches, "records", len(records),
		"scraped", batchScraped, "synthetic", batchSynthetic, "added", added)

	return &BatchResult{
		Records:    records,
		Progress:   o.progress(""),
		Scraped:    batchScraped,
		Synthetic:  batchSynthetic,
		StoreTotal: total,
	}, nil
}

// processItem runs the fetch/extract/synthesize path for one identifier,
// degrading to a mock record on any failure.
func (o *Orchestrator) processItem(ctx context.Context, id, detailURL string) Record {
	if allowed, err := o.robots.Allowed(ctx, detailURL); err == nil && !allowed {
		slog.Info("URL disallowed by robots.txt, using placeholder", "url", detailURL)
		return o.mock.Generate(id)
	}

	if parsed, err := url.Parse(detailURL); err == nil {
		if delay := o.robots.CrawlDelay(parsed.Host); delay > o.cfg.RequestDelay {
			o.pacer.SetHostDelay(parsed.Host, delay)
		}
	}

	if err := o.pacer.Wait(ctx, detailURL); err != nil {
		slog.Warn("Pacing interrupted, using placeholder", "url", detailURL, "error", err)
		return o.mock.Generate(id)
	}

	page, err := o.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		slog.Warn("Fetch failed, using placeholder", "url", detailURL, "error", err)
		return o.mock.Generate(id)
	}

	partial := o.extractor.Extract(page.Body, id)
	images := SelectImages(page.Body, o.cfg.BaseURL, id, o.cfg.MaxImages)
	return o.synth.Build(id, partial, images)
}

// Status returns a read-only snapshot of the session.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	stored, err := o.store.Count()
	if err != nil {
		slog.Warn("Failed to count stored records", "error", err)
	}

	if o.session == nil {
		return Status{StoredRecords: stored, NextBatchSize: o.cfg.BatchSize}
	}

	s := o.session
	remaining := len(s.Identifiers) - len(s.ProcessedURLs)
	next := o.cfg.BatchSize
	if remaining < next {
		next = remaining
	}
	if s.Exhausted() {
		next = 0
	}

	return Status{
		Initialized:    true,
		SessionID:      s.ID,
		CurrentBatch:   s.BatchIndex,
		TotalBatches:   s.TotalBatches,
		ProcessedCount: len(s.ProcessedURLs),
		TotalAvailable: len(s.Identifiers),
		HasMoreData:    !s.Exhausted(),
		NextBatchSize:  next,
		StoredRecords:  stored,
		ScrapedCount:   o.scraped,
		SyntheticCount: o.synthetic,
	}
}

// Reset discards the in-memory session. The persisted store is untouched.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		slog.Info("Session reset", "session_id", o.session.ID)
	}
	o.session = nil
	o.scraped, o.synthetic = 0, 0
}

// AllRecords reads the persisted store in full, without fetching
// anything.
func (o *Orchestrator) AllRecords() ([]Record, error) {
	return o.store.GetAll()
}

// Close releases network resources.
func (o *Orchestrator) Close() {
	o.fetcher.Close()
}

func (o *Orchestrator) progress(message string) BatchProgress {
	s := o.session
	return BatchProgress{
		SessionID:      s.ID,
		CurrentBatch:   s.BatchIndex,
		TotalBatches:   s.TotalBatches,
		ProcessedCount: len(s.ProcessedURLs),
		TotalAvailable: len(s.Identifiers),
		HasMore:        !s.Exhausted(),
		Message:        message,
	}
}
