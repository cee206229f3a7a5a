package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kgraph/sink/internal/observe"
	"github.com/kgraph/sink/pkg/blockstream"
)

// Default reconnection parameters: doubling backoff capped at
// defaultMaxBackoff, bounded to defaultMaxRetries attempts.
const (
	defaultMaxRetries = 10
	defaultBackoff    = 1 * time.Second
	defaultMaxBackoff = 30 * time.Second
)

// dialFunc establishes a blockstream connection resuming from cursor.
type dialFunc func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error)

// reconnector retries dialFunc with exponential backoff when the block
// stream drops.
type reconnector struct {
	dial       dialFunc
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	metrics    *observe.Metrics
	log        *slog.Logger
}

func newReconnector(dial dialFunc, metrics *observe.Metrics, log *slog.Logger) *reconnector {
	return &reconnector{
		dial:       dial,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
		metrics:    metrics,
		log:        log,
	}
}

// reconnect retries dial(ctx, cursor) with exponential backoff, up to
// maxRetries attempts. Returns the first successful client, or the last
// error once retries are exhausted.
func (r *reconnector) reconnect(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error) {
	backoff := r.backoff
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.metrics != nil {
			r.metrics.ReconnectAttempts.Add(ctx, 1)
		}

		client, err := r.dial(ctx, cursor)
		if err == nil {
			r.log.InfoContext(ctx, "block stream reconnected", "attempt", attempt)
			return client, nil
		}
		lastErr = err
		r.log.WarnContext(ctx, "block stream reconnect attempt failed", "attempt", attempt, "max_retries", r.maxRetries, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
	}

	return nil, fmt.Errorf("sink: reconnect: exhausted %d attempts: %w", r.maxRetries, lastErr)
}
