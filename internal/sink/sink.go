// Package sink runs the Event Pipeline (§4.5): it owns the block-stream
// connection, dispatches decoded events to internal/sink/events.Handler,
// and persists the resume cursor once a block's handlers all succeed.
//
// Sink's lifecycle: New wires every subsystem (with functional options for
// test-double injection), Run blocks processing blocks until ctx is
// cancelled, and Shutdown tears everything down in reverse-init order,
// respecting a deadline.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kgraph/sink/internal/config"
	"github.com/kgraph/sink/internal/observe"
	"github.com/kgraph/sink/internal/resilience"
	"github.com/kgraph/sink/internal/sink/events"
	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/blockstream/wsclient"
	"github.com/kgraph/sink/pkg/ipfs"
	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/kg/postgres"
)

// defaultRootSpaceID scopes cross-space governance bookkeeping when
// cfg.Bootstrap.RootSpaceID is left unset.
const defaultRootSpaceID kg.EntityID = "system:space:root"

// Sink owns the block-stream connection and the store/content-store
// handles the Event Pipeline shares across calls (§5 Shared Resources).
type Sink struct {
	store   kg.Store
	content ipfs.Client
	handler *events.Handler
	dial    dialFunc
	recon   *reconnector
	metrics *observe.Metrics
	log     *slog.Logger

	mu     sync.Mutex
	client blockstream.Client

	closers  []func() error
	stopOnce sync.Once
}

// Option is a functional option for New, used to inject test doubles.
type Option func(*Sink)

// WithStore injects a store instead of connecting one from config.
func WithStore(s kg.Store) Option {
	return func(s2 *Sink) { s2.store = s }
}

// WithContent injects a content-store client instead of building one from
// config.
func WithContent(c ipfs.Client) Option {
	return func(s *Sink) { s.content = c }
}

// WithDial injects the block-stream dial function instead of building a
// wsclient.Dial-backed one from config.
func WithDial(d func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error)) Option {
	return func(s *Sink) { s.dial = d }
}

// WithMetrics injects a metrics instance instead of observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Sink) { s.metrics = m }
}

// WithLogger injects a logger instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) { s.log = l }
}

// New wires a Sink from cfg, connecting a store and content-store client
// for any dependency not already injected via Option.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Sink, error) {
	s := &Sink{}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	if s.store == nil {
		store, err := postgres.NewStore(ctx, cfg.Store.PostgresDSN, cfg.Embeddings.Dimensions,
			postgres.WithLogger(s.log))
		if err != nil {
			return nil, fmt.Errorf("sink: connect store: %w", err)
		}
		s.store = store
		s.closers = append(s.closers, func() error { store.Close(); return nil })
	}

	if s.content == nil {
		breaker := resilience.NewGatewayBreaker(resilience.GatewayBreakerConfig{
			Gateway:              cfg.ContentStore.GatewayURL,
			MaxConsecutiveMisses: cfg.ContentStore.CircuitBreakerMaxFailures,
			ProbeAfter:           cfg.ContentStore.CircuitBreakerResetTimeout,
		})
		s.content = ipfs.NewHTTPClient(cfg.ContentStore.GatewayURL,
			ipfs.WithFetchTimeout(cfg.ContentStore.FetchTimeout),
			ipfs.WithCircuitBreaker(breaker),
		)
	}

	rootSpaceID := defaultRootSpaceID
	if cfg.Bootstrap.RootSpaceID != "" {
		rootSpaceID = kg.EntityID(cfg.Bootstrap.RootSpaceID)
	}
	s.handler = events.NewHandler(s.store, s.content, s.metrics, rootSpaceID, s.log)

	if s.dial == nil {
		endpoint, apiToken := cfg.BlockStream.Endpoint, cfg.BlockStream.APIToken
		s.dial = func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error) {
			return wsclient.Dial(ctx, endpoint, apiToken, cursor)
		}
	}
	s.recon = newReconnector(s.dial, s.metrics, s.log)

	return s, nil
}

// Run connects to the block stream (resuming from the last persisted
// cursor, if any) and processes blocks until ctx is cancelled or an
// unrecoverable error occurs. The cursor only advances after every handler
// for a block returns successfully (§7), so a crash mid-block replays that
// block on restart rather than skipping it.
func (s *Sink) Run(ctx context.Context) error {
	cursor, err := s.store.Cursor(ctx)
	if err != nil && !errors.Is(err, kg.ErrNotFound) {
		return fmt.Errorf("sink: read cursor: %w", err)
	}

	client, err := s.dial(ctx, blockstream.Cursor(cursor))
	if err != nil {
		return fmt.Errorf("sink: initial connect: %w", err)
	}
	s.setClient(client)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		evt, err := s.getClient().Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WarnContext(ctx, "block stream recv error, reconnecting", "error", err)
			s.getClient().Close()

			newClient, rerr := s.recon.reconnect(ctx, blockstream.Cursor(cursor))
			if rerr != nil {
				return fmt.Errorf("sink: block stream unrecoverable: %w", rerr)
			}
			s.setClient(newClient)
			continue
		}

		if err := s.processBlock(ctx, evt); err != nil {
			return err
		}
		cursor = string(evt.Cursor)
	}
}

// processBlock dispatches evt's events and, only on success, persists its
// cursor and advances the head-block gauges.
func (s *Sink) processBlock(ctx context.Context, evt *blockstream.BlockEvent) error {
	start := time.Now()
	err := dispatchBlock(ctx, s.handler, evt)
	s.metrics.BlockProcessDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("sink: process block %d: %w", evt.Clock.Number, err)
	}

	meta := kg.BlockMetadata{Timestamp: evt.Clock.Timestamp, BlockNumber: evt.Clock.Number}
	cursorStart := time.Now()
	err = s.store.SetCursor(ctx, string(evt.Cursor), meta)
	s.metrics.CursorPersistDuration.Record(ctx, time.Since(cursorStart).Seconds())
	if err != nil {
		s.metrics.RecordStoreError(ctx, "SetCursor")
		return fmt.Errorf("sink: persist cursor for block %d: %w", evt.Clock.Number, err)
	}

	s.metrics.SetHeadBlock(ctx, int64(evt.Clock.Number), evt.Clock.Timestamp.Unix(), time.Now().Unix())
	return nil
}

func (s *Sink) setClient(c blockstream.Client) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}

func (s *Sink) getClient() blockstream.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Shutdown closes the block-stream connection and every registered closer
// in reverse-init order, respecting ctx's deadline.
func (s *Sink) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.stopOnce.Do(func() {
		if c := s.getClient(); c != nil {
			if err := c.Close(); err != nil {
				s.log.WarnContext(ctx, "block stream close error", "error", err)
			}
		}

		for i := len(s.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				s.log.WarnContext(ctx, "shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := s.closers[i](); err != nil {
				s.log.WarnContext(ctx, "closer error", "index", i, "error", err)
			}
		}
	})
	return shutdownErr
}
