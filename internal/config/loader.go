package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required"))
	}
	if cfg.Store.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("store.max_conns %d must not be negative", cfg.Store.MaxConns))
	}

	if cfg.BlockStream.Endpoint == "" {
		errs = append(errs, errors.New("block_stream.endpoint is required"))
	}
	if cfg.BlockStream.EndBlock != 0 && cfg.BlockStream.EndBlock < cfg.BlockStream.StartBlock {
		errs = append(errs, fmt.Errorf("block_stream.end_block %d is before start_block %d", cfg.BlockStream.EndBlock, cfg.BlockStream.StartBlock))
	}

	switch cfg.Embeddings.Provider {
	case "", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("embeddings.provider %q is invalid; valid values: openai, ollama", cfg.Embeddings.Provider))
	}
	if cfg.Embeddings.Provider != "" && cfg.Embeddings.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embeddings.provider %q is configured but embeddings.dimensions is not set", cfg.Embeddings.Provider))
	}

	return errors.Join(errs...)
}
