// Command kgsink runs the knowledge graph sink: it bootstraps the
// well-known system-id catalogue, then streams on-chain events into the
// versioned graph store, exposing /healthz, /readyz, and /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kgraph/sink/internal/bootstrap"
	"github.com/kgraph/sink/internal/config"
	"github.com/kgraph/sink/internal/health"
	"github.com/kgraph/sink/internal/observe"
	"github.com/kgraph/sink/internal/sink"
	"github.com/kgraph/sink/pkg/embeddings"
	"github.com/kgraph/sink/pkg/embeddings/ollama"
	"github.com/kgraph/sink/pkg/embeddings/openai"
	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/kg/postgres"
)

// bootstrapVersionTag identifies the catalogue version the sentinel gate
// compares against. Bumping it forces a full re-bootstrap on next start.
const bootstrapVersionTag = "v1"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	resetDB := flag.Bool("reset-db", false, "drop and recreate all sink-owned tables before running")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "kgsink: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "kgsink: %v\n", err)
		}
		return 1
	}
	if *resetDB {
		cfg.Store.ResetDB = true
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "kgsink"})
	if err != nil {
		logger.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	storeOpts := []postgres.Option{postgres.WithLogger(logger)}
	embeddingsProvider, err := buildEmbeddingsProvider(cfg.Embeddings)
	if err != nil {
		logger.Error("failed to build embeddings provider", "err", err)
		return 1
	}
	if embeddingsProvider != nil {
		storeOpts = append(storeOpts, postgres.WithEmbeddings(embeddingsProvider))
		logger.Info("embeddings provider configured", "provider", cfg.Embeddings.Provider, "model", embeddingsProvider.ModelID())
	}

	store, err := postgres.NewStore(ctx, cfg.Store.PostgresDSN, cfg.Embeddings.Dimensions, storeOpts...)
	if err != nil {
		logger.Error("failed to connect to store", "err", err)
		return 1
	}
	defer store.Close()

	if cfg.Store.ResetDB {
		logger.Warn("reset_db is set — dropping all sink-owned data before bootstrap")
		if err := store.ResetAll(ctx); err != nil {
			logger.Error("failed to reset store", "err", err)
			return 1
		}
	}

	rootSpaceID := kg.EntityID(cfg.Bootstrap.RootSpaceID)
	if rootSpaceID == "" {
		rootSpaceID = "system:space:root"
	}

	cat, err := loadCatalogue(cfg.Bootstrap.CataloguePath)
	if err != nil {
		logger.Error("failed to load bootstrap catalogue", "err", err)
		return 1
	}
	if err := bootstrap.Run(ctx, store, cat, rootSpaceID, bootstrapVersionTag); err != nil {
		logger.Error("bootstrap failed", "err", err)
		return 1
	}
	logger.Info("bootstrap complete", "root_space_id", rootSpaceID, "version_tag", bootstrapVersionTag)

	kgSink, err := sink.New(ctx, cfg, sink.WithStore(store), sink.WithMetrics(metrics), sink.WithLogger(logger))
	if err != nil {
		logger.Error("failed to initialise sink", "err", err)
		return 1
	}

	httpServer := newHTTPServer(cfg.Server.ListenAddr, store, metrics, logger)
	serveErrs := make(chan error, 1)
	go func() {
		logger.Info("operator http server listening", "addr", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrs <- err
			return
		}
		serveErrs <- nil
	}()

	runErrs := make(chan error, 1)
	go func() { runErrs <- kgSink.Run(ctx) }()

	logger.Info("kgsink running — press Ctrl+C to shut down")

	var exitCode int
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping…")
	case err := <-runErrs:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sink run error", "err", err)
			exitCode = 1
		}
	case err := <-serveErrs:
		if err != nil {
			logger.Error("operator http server error", "err", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("operator http server shutdown error", "err", err)
	}
	if err := kgSink.Shutdown(shutdownCtx); err != nil {
		logger.Error("sink shutdown error", "err", err)
		exitCode = 1
	}

	logger.Info("goodbye")
	return exitCode
}

// buildEmbeddingsProvider constructs the configured embeddings backend, or
// returns a nil Provider (disabling semantic indexing) when none is set.
func buildEmbeddingsProvider(cfg config.EmbeddingsConfig) (embeddings.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		opts := []openai.Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	case "ollama":
		return ollama.New(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider %q", cfg.Provider)
	}
}

// loadCatalogue loads the bootstrap catalogue from path, falling back to the
// embedded default when path is empty.
func loadCatalogue(path string) (*bootstrap.Catalogue, error) {
	if path == "" {
		return bootstrap.LoadDefaultCatalogue()
	}
	return bootstrap.LoadCatalogue(path)
}

// newHTTPServer builds the operator surface: liveness/readiness probes
// backed by a store ping, plus a Prometheus scrape endpoint.
func newHTTPServer(addr string, store kg.Store, metrics *observe.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	healthHandler := health.New(health.Checker{
		Name: "store",
		Check: func(ctx context.Context) error {
			return store.Ping(ctx)
		},
	})
	healthHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:    addr,
		Handler: observe.Middleware(metrics)(mux),
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
