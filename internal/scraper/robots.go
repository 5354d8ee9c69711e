package scraper

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RobotsGate checks detail-page URLs against the host's robots.txt.
// Rules are fetched once per host and cached for the process lifetime.
// An unreachable robots.txt is treated as allow-all.
type RobotsGate struct {
	fetcher *Fetcher
	rules   map[string]*robotRules
	mu      sync.RWMutex
	enabled bool
}

type robotRules struct {
	disallowed []string
	allowed    []string
	crawlDelay time.Duration
}

// NewRobotsGate creates a robots gate. When enabled is false every URL is
// allowed without fetching anything.
func NewRobotsGate(fetcher *Fetcher, enabled bool) *RobotsGate {
	return &RobotsGate{
		fetcher: fetcher,
		rules:   make(map[string]*robotRules),
		enabled: enabled,
	}
}

// Allowed reports whether urlStr may be fetched.
func (g *RobotsGate) Allowed(ctx context.Context, urlStr string) (bool, error) {
	if !g.enabled {
		return true, nil
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false, fmt.Errorf("invalid URL: %w", err)
	}

	rules, err := g.hostRules(ctx, parsed.Host, parsed.Scheme)
	if err != nil {
		// Unreachable robots.txt: assume allowed.
		return true, nil
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range rules.disallowed {
		if matchesRobotsPattern(path, pattern) {
			for _, allow := range rules.allowed {
				if matchesRobotsPattern(path, allow) && len(allow) > len(pattern) {
					return true, nil
				}
			}
			return false, nil
		}
	}

	return true, nil
}

// CrawlDelay returns the crawl-delay declared for a host, zero if none.
func (g *RobotsGate) CrawlDelay(host string) time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if rules, ok := g.rules[host]; ok {
		return rules.crawlDelay
	}
	return 0
}

func (g *RobotsGate) hostRules(ctx context.Context, host, scheme string) (*robotRules, error) {
	g.mu.RLock()
	rules, exists := g.rules[host]
	g.mu.RUnlock()

	if exists {
		return rules, nil
	}

	page, err := g.fetcher.get(ctx, fmt.Sprintf("%s://%s/robots.txt", scheme, host))
	if err != nil {
		return nil, err
	}

	switch page.StatusCode {
	case 404:
		// No robots.txt means everything is allowed.
		rules = &robotRules{}
	case 200:
		rules = parseRobotsTxt(string(page.Body))
	default:
		return nil, fmt.Errorf("unexpected status code: %d", page.StatusCode)
	}

	g.mu.Lock()
	g.rules[host] = rules
	g.mu.Unlock()

	return rules, nil
}

func parseRobotsTxt(content string) *robotRules {
	rules := &robotRules{}

	scanner := bufio.NewScanner(strings.NewReader(content))
	applies := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		directive := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch directive {
		case "user-agent":
			agent := strings.ToLower(value)
			applies = agent == "*" || strings.Contains(agent, "petcrawl")
		case "disallow":
			if applies && value != "" {
				rules.disallowed = append(rules.disallowed, value)
			}
		case "allow":
			if applies && value != "" {
				rules.allowed = append(rules.allowed, value)
			}
		case "crawl-delay":
			if applies {
				if delay, err := time.ParseDuration(value + "s"); err == nil {
					rules.crawlDelay = delay
				}
			}
		}
	}

	return rules
}

// matchesRobotsPattern does prefix matching with * wildcards and a $
// end-of-URL anchor, which covers the directives shelters actually use.
func matchesRobotsPattern(path, pattern string) bool {
	if strings.Contains(pattern, "*") {
		parts := strings.Split(pattern, "*")
		if !strings.HasPrefix(path, parts[0]) {
			return false
		}
		remaining := path[len(parts[0]):]
		for _, part := range parts[1:] {
			if part == "" {
				continue
			}
			idx := strings.Index(remaining, part)
			if idx == -1 {
				return false
			}
			remaining = remaining[idx+len(part):]
		}
		return true
	}

	if strings.HasSuffix(pattern, "$") {
		return path == strings.TrimSuffix(pattern, "$")
	}

	return strings.HasPrefix(path, pattern)
}
