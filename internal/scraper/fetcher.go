package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Page is the transient result of one successful fetch. It is consumed
// immediately by the extractor and never persisted.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
}

// FetchError is returned when a URL could not be fetched. Transient
// failures (timeouts, non-200 responses, undersized bodies) have been
// retried before being surfaced; the caller decides whether to degrade to
// a synthetic record.
type FetchError struct {
	URL       string
	Attempts  int
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("fetch %s failed (%s, %d attempts): %v", e.URL, kind, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	UserAgent    string
	Timeout      time.Duration // per attempt
	MaxRetries   int
	BaseDelay    time.Duration // backoff unit, attempt N waits N*BaseDelay
	MinBodyBytes int           // shorter bodies are treated as block pages
}

// Fetcher performs HTTP GETs with validation and linear-backoff retries
type Fetcher struct {
	client *http.Client
	opts   FetcherOptions

	// sleep is replaceable in tests to avoid real backoff waits
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher with a connection-pooled client
func NewFetcher(opts FetcherOptions) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &Fetcher{
		client: client,
		opts:   opts,
		sleep:  sleepCtx,
	}
}

// Fetch retrieves url, retrying soft failures with linearly increasing
// backoff. A response is accepted only if the status is 200 and the body
// is at least MinBodyBytes long; anything shorter is likely a block page
// or an empty shell and is retried.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &FetchError{URL: rawURL, Attempts: 0, Transient: false, Err: fmt.Errorf("malformed URL")}
	}

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxRetries; attempt++ {
		page, err := f.get(ctx, rawURL)
		if err == nil {
			if page.StatusCode == http.StatusOK && len(page.Body) >= f.opts.MinBodyBytes {
				return page, nil
			}
			err = fmt.Errorf("unusable response: status=%d body=%d bytes", page.StatusCode, len(page.Body))
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		if attempt < f.opts.MaxRetries {
			backoff := time.Duration(attempt) * f.opts.BaseDelay
			slog.Debug("Retrying fetch", "url", rawURL, "attempt", attempt, "backoff", backoff, "error", err)
			if err := f.sleep(ctx, backoff); err != nil {
				break
			}
		}
	}

	return nil, &FetchError{URL: rawURL, Attempts: f.opts.MaxRetries, Transient: true, Err: lastErr}
}

// get performs a single GET attempt without retry or body validation.
// The robots gate uses it directly since robots.txt responses are small.
func (f *Fetcher) get(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8,zh-HK;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// Close releases idle connections
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
