package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testRobotsTxt = `# test rules
User-agent: *
Disallow: /admin/
Disallow: /private
Allow: /admin/public/
Crawl-delay: 2

User-agent: othercrawler
Disallow: /
`

func robotsTestServer(t *testing.T, robotsBody string, robotsStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(robotsStatus)
			_, _ = w.Write([]byte(robotsBody))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRobotsGateDisabled(t *testing.T) {
	g := NewRobotsGate(testFetcher(FetcherOptions{}), false)

	allowed, err := g.Allowed(context.Background(), "https://example.com/admin/secret")
	if err != nil {
		t.Fatalf("Allowed failed: %v", err)
	}
	if !allowed {
		t.Error("Disabled gate should allow everything")
	}
}

func TestRobotsGateRules(t *testing.T) {
	server := robotsTestServer(t, testRobotsTxt, http.StatusOK)
	defer server.Close()

	f := testFetcher(FetcherOptions{})
	defer f.Close()
	g := NewRobotsGate(f, true)
	ctx := context.Background()

	tests := []struct {
		path    string
		allowed bool
	}{
		{"/en/pet/467812", true},
		{"/admin/users", false},
		{"/admin/public/info", true},
		{"/private", false},
		{"/private-stuff", false},
		{"/", true},
	}

	for _, tt := range tests {
		allowed, err := g.Allowed(ctx, server.URL+tt.path)
		if err != nil {
			t.Errorf("Allowed(%s) failed: %v", tt.path, err)
			continue
		}
		if allowed != tt.allowed {
			t.Errorf("Allowed(%s) = %v, want %v", tt.path, allowed, tt.allowed)
		}
	}
}

func TestRobotsGateCrawlDelay(t *testing.T) {
	server := robotsTestServer(t, testRobotsTxt, http.StatusOK)
	defer server.Close()

	f := testFetcher(FetcherOptions{})
	defer f.Close()
	g := NewRobotsGate(f, true)

	// Rules are fetched lazily on the first check.
	if _, err := g.Allowed(context.Background(), server.URL+"/"); err != nil {
		t.Fatalf("Allowed failed: %v", err)
	}

	host := server.Listener.Addr().String()
	if delay := g.CrawlDelay(host); delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}
	if delay := g.CrawlDelay("unknown.example.com"); delay != 0 {
		t.Errorf("Unknown host should have zero delay, got %v", delay)
	}
}

func TestRobotsGateMissingFileAllowsAll(t *testing.T) {
	server := robotsTestServer(t, "", http.StatusNotFound)
	defer server.Close()

	f := testFetcher(FetcherOptions{})
	defer f.Close()
	g := NewRobotsGate(f, true)

	allowed, err := g.Allowed(context.Background(), server.URL+"/anything")
	if err != nil {
		t.Fatalf("Allowed failed: %v", err)
	}
	if !allowed {
		t.Error("Missing robots.txt should allow everything")
	}
}

func TestRobotsGateUnreachableHostAllows(t *testing.T) {
	f := testFetcher(FetcherOptions{Timeout: 500 * time.Millisecond})
	defer f.Close()
	g := NewRobotsGate(f, true)

	allowed, err := g.Allowed(context.Background(), "http://127.0.0.1:1/pet/1")
	if err != nil {
		t.Fatalf("Allowed failed: %v", err)
	}
	if !allowed {
		t.Error("Unreachable robots.txt should be treated as allow-all")
	}
}

func TestMatchesRobotsPattern(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/admin/users", "/admin/", true},
		{"/adminx", "/admin/", false},
		{"/files/doc.pdf", "/files/*.pdf", true},
		{"/files/doc.txt", "/files/*.pdf", false},
		{"/exact", "/exact$", true},
		{"/exact/sub", "/exact$", false},
		{"/a/x/b", "/a/*/b", true},
	}

	for _, tt := range tests {
		if got := matchesRobotsPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchesRobotsPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestParseRobotsTxtAgentSections(t *testing.T) {
	rules := parseRobotsTxt("User-agent: PetCrawl\nDisallow: /only-us/\n\nUser-agent: other\nDisallow: /\n")

	if len(rules.disallowed) != 1 || rules.disallowed[0] != "/only-us/" {
		t.Errorf("Expected only the petcrawl section to apply, got %v", rules.disallowed)
	}
}
