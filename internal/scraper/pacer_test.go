package scraper

import (
	"context"
	"testing"
	"time"
)

func TestPacerAllowsFirstRequestImmediately(t *testing.T) {
	p := NewPacer(1 * time.Second)

	start := time.Now()
	if err := p.Wait(context.Background(), "https://example.com/a"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First request should not be delayed, waited %v", elapsed)
	}
}

func TestPacerSpacesRequestsPerHost(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)
	ctx := context.Background()

	_ = p.Wait(ctx, "https://example.com/a")

	start := time.Now()
	if err := p.Wait(ctx, "https://example.com/b"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Second request to same host should be delayed, waited only %v", elapsed)
	}
}

func TestPacerHostsAreIndependent(t *testing.T) {
	p := NewPacer(1 * time.Second)
	ctx := context.Background()

	_ = p.Wait(ctx, "https://one.example.com/")

	start := time.Now()
	if err := p.Wait(ctx, "https://two.example.com/"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Different host should not be delayed, waited %v", elapsed)
	}
}

func TestPacerSetHostDelay(t *testing.T) {
	p := NewPacer(1 * time.Millisecond)
	ctx := context.Background()

	p.SetHostDelay("slow.example.com", 50*time.Millisecond)

	_ = p.Wait(ctx, "https://slow.example.com/")
	start := time.Now()
	_ = p.Wait(ctx, "https://slow.example.com/")
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Host override should apply, waited only %v", elapsed)
	}
}

func TestPacerWaitCancellation(t *testing.T) {
	p := NewPacer(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	_ = p.Wait(ctx, "https://example.com/")

	cancel()
	if err := p.Wait(ctx, "https://example.com/"); err == nil {
		t.Error("Wait with cancelled context should return an error")
	}
}
