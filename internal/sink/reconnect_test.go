package sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kgraph/sink/pkg/blockstream"
)

type stubClient struct{}

func (stubClient) Recv(ctx context.Context) (*blockstream.BlockEvent, error) { return nil, nil }
func (stubClient) Close() error                                             { return nil }

var errDialFailed = errors.New("dial failed")

func TestReconnector_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	dial := func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error) {
		attempts++
		if attempts < 3 {
			return nil, errDialFailed
		}
		return stubClient{}, nil
	}
	r := newReconnector(dial, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.backoff = time.Millisecond
	r.maxBackoff = 2 * time.Millisecond

	client, err := r.reconnect(context.Background(), "cursor")
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if client == nil {
		t.Fatal("expected a non-nil client")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestReconnector_ExhaustsRetriesAndReturnsWrappedError(t *testing.T) {
	dial := func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error) {
		return nil, errDialFailed
	}
	r := newReconnector(dial, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.maxRetries = 2
	r.backoff = time.Millisecond
	r.maxBackoff = 2 * time.Millisecond

	_, err := r.reconnect(context.Background(), "cursor")
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if !errors.Is(err, errDialFailed) {
		t.Fatalf("expected wrapped errDialFailed, got %v", err)
	}
}

func TestReconnector_StopsImmediatelyOnCancelledContext(t *testing.T) {
	dial := func(ctx context.Context, cursor blockstream.Cursor) (blockstream.Client, error) {
		t.Fatal("dial should not be called with an already-cancelled context")
		return nil, nil
	}
	r := newReconnector(dial, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.reconnect(ctx, "cursor")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
