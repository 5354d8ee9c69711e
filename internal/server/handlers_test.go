package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hclam/petcrawl/internal/config"
	"github.com/hclam/petcrawl/internal/scraper"
	"github.com/hclam/petcrawl/internal/storage"
)

// newTestServer wires a real orchestrator against an upstream that serves
// nothing, so every record degrades to a synthetic one quickly.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.BaseURL = upstream.URL
	cfg.SeedIdentifiers = []string{"1", "2"}
	cfg.BatchSize = 2
	cfg.RequestDelay = 1 * time.Millisecond
	cfg.RetryBaseDelay = 1 * time.Millisecond
	cfg.MaxRetries = 1
	cfg.RespectRobots = false
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewPetStore(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	orch := scraper.NewOrchestrator(cfg, store)
	t.Cleanup(orch.Close)

	return New(":0", orch)
}

func do(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/scrape/batch"},
		{http.MethodPost, "/api/scrape/status"},
		{http.MethodGet, "/api/scrape/reset"},
		{http.MethodPost, "/api/pets"},
	}

	for _, tt := range tests {
		rec := do(t, srv, tt.method, tt.path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func TestBatchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/scrape/batch")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var result scraper.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(result.Records))
	}
	if result.Synthetic != 2 {
		t.Errorf("Expected 2 synthetic records, got %d", result.Synthetic)
	}
	if result.Progress.HasMore {
		t.Error("Single-batch session should be complete")
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/scrape/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var status scraper.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if status.Initialized {
		t.Error("Fresh server should report an uninitialized session")
	}

	_ = do(t, srv, http.MethodPost, "/api/scrape/batch")

	rec = do(t, srv, http.MethodGet, "/api/scrape/status")
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if !status.Initialized || status.ProcessedCount != 2 {
		t.Errorf("Status after batch wrong: %+v", status)
	}
	if status.StoredRecords != 2 {
		t.Errorf("StoredRecords = %d, want 2", status.StoredRecords)
	}
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_ = do(t, srv, http.MethodPost, "/api/scrape/batch")

	rec := do(t, srv, http.MethodPost, "/api/scrape/reset")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var status scraper.Status
	statusRec := do(t, srv, http.MethodGet, "/api/scrape/status")
	if err := json.Unmarshal(statusRec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if status.Initialized {
		t.Error("Reset should discard the session")
	}
	if status.StoredRecords != 2 {
		t.Errorf("Reset must not touch the store, StoredRecords = %d", status.StoredRecords)
	}
}

func TestPetsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Empty store encodes as an empty array, never null.
	rec := do(t, srv, http.MethodGet, "/api/pets")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Empty store should return [], got %q", body)
	}

	_ = do(t, srv, http.MethodPost, "/api/scrape/batch")

	rec = do(t, srv, http.MethodGet, "/api/pets")
	var records []scraper.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Provenance != scraper.ProvenanceSynthetic {
			t.Errorf("Record %s should be synthetic", r.ID)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Health body = %v", body)
	}
}
