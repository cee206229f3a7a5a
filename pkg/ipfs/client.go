// Package ipfs fetches content-addressed edit payloads by hash, the content
// store side of the ingress surface. A GatewayBreaker guards the network
// call so a flaky pinning gateway degrades gracefully instead of being
// hammered on every block, and a disk cache avoids re-fetching content
// already seen.
package ipfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kgraph/sink/internal/resilience"
)

const defaultCacheDir = "ipfs-cache"

// Client fetches raw bytes for a content hash.
type Client interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// HTTPClient is a disk-cache-backed, circuit-breaker-protected Client that
// fetches content from an HTTP gateway (e.g. a pinning service's /ipfs/
// endpoint).
type HTTPClient struct {
	gatewayURL string
	cacheDir   string
	httpClient *http.Client
	breaker    *resilience.GatewayBreaker
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithCacheDir overrides the on-disk cache directory (default "ipfs-cache").
func WithCacheDir(dir string) Option {
	return func(c *HTTPClient) { c.cacheDir = dir }
}

// WithHTTPClient overrides the underlying *http.Client (e.g. to set a
// transport-level timeout or proxy).
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = h }
}

// WithFetchTimeout sets a per-request timeout on the http.Client in place
// when the option runs: a WithHTTPClient applied earlier has its client's
// Timeout changed, and one applied later replaces the client and its
// timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCircuitBreaker overrides the breaker protecting gateway fetches.
func WithCircuitBreaker(b *resilience.GatewayBreaker) Option {
	return func(c *HTTPClient) { c.breaker = b }
}

// NewHTTPClient returns an HTTPClient that resolves hashes against
// gatewayURL (e.g. "https://gateway.lighthouse.storage/ipfs/").
func NewHTTPClient(gatewayURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		gatewayURL: gatewayURL,
		cacheDir:   defaultCacheDir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker: resilience.NewGatewayBreaker(resilience.GatewayBreakerConfig{
			Gateway: gatewayURL,
		}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the bytes for hash, consulting the on-disk cache first and
// populating it on a successful network fetch. Network fetches are guarded
// by the circuit breaker; resilience.ErrGatewayUnreachable surfaces
// unwrapped so callers can
// distinguish "content store is down" from "this hash 404s".
func (c *HTTPClient) Fetch(ctx context.Context, hash string) ([]byte, error) {
	hash = strings.TrimPrefix(hash, "ipfs://")

	cachePath := filepath.Join(c.cacheDir, hash)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	var body []byte
	err := c.breaker.Guard(func() error {
		b, err := c.fetchFromGateway(ctx, hash)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return body, nil // cache write failure degrades caching only, not correctness
	}
	_ = os.WriteFile(cachePath, body, 0o644)

	return body, nil
}

func (c *HTTPClient) fetchFromGateway(ctx context.Context, hash string) ([]byte, error) {
	url := c.gatewayURL + hash
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ipfs: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipfs: fetch %s: %w", hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipfs: fetch %s: unexpected status %s", hash, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ipfs: read body for %s: %w", hash, err)
	}
	return body, nil
}
