// Package resilience guards the content-store gateway fetch path against a
// flaky or overloaded IPFS pinning gateway.
//
// The central type is [GatewayBreaker], a three-state breaker (reachable →
// unreachable → probing) that stops repeated content fetches from hammering
// a gateway that is already failing, and lets traffic resume automatically
// once the gateway recovers.
//
// GatewayBreaker is safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrGatewayUnreachable is returned by [GatewayBreaker.Guard] when the
// breaker considers the gateway unreachable and the probe interval has not
// yet elapsed.
var ErrGatewayUnreachable = errors.New("content-store gateway circuit is open")

// GatewayState represents the current view a [GatewayBreaker] holds of the
// gateway it protects.
type GatewayState int

const (
	// GatewayReachable is the normal state — fetches are forwarded to the
	// gateway.
	GatewayReachable GatewayState = iota

	// GatewayUnreachable means the breaker tripped after too many consecutive
	// fetch failures. Fetches are rejected immediately with
	// [ErrGatewayUnreachable] until the probe interval elapses.
	GatewayUnreachable

	// GatewayProbing is entered after the probe interval elapses following
	// GatewayUnreachable. A limited number of fetches are let through to test
	// whether the gateway has recovered.
	GatewayProbing
)

// String returns the human-readable name of the state.
func (s GatewayState) String() string {
	switch s {
	case GatewayReachable:
		return "reachable"
	case GatewayUnreachable:
		return "unreachable"
	case GatewayProbing:
		return "probing"
	default:
		return "unknown"
	}
}

// GatewayBreakerConfig holds tuning knobs for a [GatewayBreaker].
type GatewayBreakerConfig struct {
	// Gateway is a human-readable label (e.g. the gateway URL) used in log
	// messages.
	Gateway string

	// MaxConsecutiveMisses is the number of consecutive fetch failures while
	// reachable before the breaker trips. Default: 5.
	MaxConsecutiveMisses int

	// ProbeAfter is how long the breaker waits after tripping before letting a
	// probe fetch through. Default: 30s.
	ProbeAfter time.Duration

	// ProbeBudget is the number of probe fetches allowed through while
	// GatewayProbing before the breaker decides to close or re-trip.
	// Default: 3.
	ProbeBudget int
}

// GatewayBreaker protects fetches against a single content-store gateway.
// It is safe for concurrent use from multiple goroutines.
type GatewayBreaker struct {
	gateway     string
	maxMisses   int
	probeAfter  time.Duration
	probeBudget int

	mu                sync.Mutex
	state             GatewayState
	consecutiveMisses int
	lastMiss          time.Time
	probeCalls        int
	probeMisses       int
}

// NewGatewayBreaker creates a [GatewayBreaker] with the supplied
// configuration. Zero-value config fields are replaced with sensible
// defaults.
func NewGatewayBreaker(cfg GatewayBreakerConfig) *GatewayBreaker {
	if cfg.MaxConsecutiveMisses <= 0 {
		cfg.MaxConsecutiveMisses = 5
	}
	if cfg.ProbeAfter <= 0 {
		cfg.ProbeAfter = 30 * time.Second
	}
	if cfg.ProbeBudget <= 0 {
		cfg.ProbeBudget = 3
	}
	return &GatewayBreaker{
		gateway:     cfg.Gateway,
		maxMisses:   cfg.MaxConsecutiveMisses,
		probeAfter:  cfg.ProbeAfter,
		probeBudget: cfg.ProbeBudget,
		state:       GatewayReachable,
	}
}

// Guard runs fetch if the breaker's current state allows it. While
// GatewayUnreachable it returns [ErrGatewayUnreachable] without calling
// fetch. While GatewayProbing a limited number of fetches are permitted
// through to test recovery.
func (b *GatewayBreaker) Guard(fetch func() error) error {
	b.mu.Lock()
	switch b.state {
	case GatewayUnreachable:
		if time.Since(b.lastMiss) >= b.probeAfter {
			b.state = GatewayProbing
			b.probeCalls = 0
			b.probeMisses = 0
			slog.Info("content-store gateway breaker probing", "gateway", b.gateway)
		} else {
			b.mu.Unlock()
			return ErrGatewayUnreachable
		}

	case GatewayProbing:
		if b.probeCalls >= b.probeBudget {
			b.mu.Unlock()
			return ErrGatewayUnreachable
		}
	}

	probing := b.state == GatewayProbing
	if probing {
		b.probeCalls++
	}
	b.mu.Unlock()

	err := fetch()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordMiss(probing)
	} else {
		b.recordHit(probing)
	}
	return err
}

// recordMiss handles failure accounting. Must be called with b.mu held.
func (b *GatewayBreaker) recordMiss(probing bool) {
	b.lastMiss = time.Now()

	if probing {
		b.probeMisses++
		b.state = GatewayUnreachable
		b.consecutiveMisses = b.maxMisses
		slog.Warn("content-store gateway probe failed, re-tripping breaker", "gateway", b.gateway)
		return
	}

	b.consecutiveMisses++
	if b.consecutiveMisses >= b.maxMisses {
		b.state = GatewayUnreachable
		slog.Warn("content-store gateway breaker tripped",
			"gateway", b.gateway,
			"consecutive_misses", b.consecutiveMisses)
	}
}

// recordHit handles success accounting. Must be called with b.mu held.
func (b *GatewayBreaker) recordHit(probing bool) {
	if probing {
		hits := b.probeCalls - b.probeMisses
		if hits >= b.probeBudget {
			b.state = GatewayReachable
			b.consecutiveMisses = 0
			b.probeCalls = 0
			b.probeMisses = 0
			slog.Info("content-store gateway breaker closed after successful probes", "gateway", b.gateway)
		}
		return
	}

	b.consecutiveMisses = 0
}

// State returns the current [GatewayState]. If the breaker is
// GatewayUnreachable and the probe interval has elapsed, the returned state
// is GatewayProbing (the actual transition happens on the next [Guard]
// call).
func (b *GatewayBreaker) State() GatewayState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == GatewayUnreachable && time.Since(b.lastMiss) >= b.probeAfter {
		return GatewayProbing
	}
	return b.state
}

// Reset manually forces the breaker back to GatewayReachable, clearing all
// miss counters. Used by operator tooling to clear a trip without waiting
// out the probe interval.
func (b *GatewayBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = GatewayReachable
	b.consecutiveMisses = 0
	b.probeCalls = 0
	b.probeMisses = 0
	slog.Info("content-store gateway breaker manually reset", "gateway", b.gateway)
}
