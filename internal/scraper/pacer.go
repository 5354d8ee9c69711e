package scraper

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the politeness contract: at most one request per
// configured delay to any single host. Spacing out requests is part of the
// functional contract with the upstream site, which blocks bursty clients.
type Pacer struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	delay    time.Duration
}

// NewPacer creates a pacer with the given default inter-request delay
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until a request to the URL's host is allowed, or the
// context is cancelled.
func (p *Pacer) Wait(ctx context.Context, urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return err
	}

	return p.limiter(parsed.Host).Wait(ctx)
}

// SetHostDelay overrides the delay for one host, used to honor a
// robots.txt crawl-delay larger than the configured default.
func (p *Pacer) SetHostDelay(host string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if delay <= 0 {
		delay = p.delay
	}

	p.limiters[host] = rate.NewLimiter(rate.Every(delay), 1)
}

func (p *Pacer) limiter(host string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[host]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists := p.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	p.limiters[host] = limiter

	return limiter
}
