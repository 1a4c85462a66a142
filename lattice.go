package lattice

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/internal/platform"
	"github.com/aretw0/lattice/pkg/client"
	"github.com/aretw0/lattice/pkg/core"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// --- Types ---

// Config is the server configuration.
type Config = platform.Config

// Instance is a recovered server and the log it owns.
type Instance = platform.Instance

// Client is a connection to a running server.
type Client = client.Client

// --- Configuration ---

// Option defines a functional option for Open.
type Option = platform.Option

// DefaultConfig returns the configuration written on first start.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// LoadConfig reads the config at path, creating it with defaults if absent.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// WithLogger sets the logger for the log adapter and the server.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithLog injects an already opened log.
func WithLog(l core.Log) Option {
	return platform.WithLog(l)
}

// WithRegisterer exports server metrics through reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return platform.WithRegisterer(reg)
}

// WithStoragePath overrides the log location.
func WithStoragePath(path string) Option {
	return platform.WithStoragePath(path)
}

// WithFormat overrides the log encoding.
func WithFormat(f core.Format) Option {
	return platform.WithFormat(f)
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return platform.WithWorkers(n)
}

// WithSync overrides whether every append is fsynced.
func WithSync(enabled bool) Option {
	return platform.WithSync(enabled)
}

// --- Factory ---

// Open builds a server from cfg and replays its log.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Instance, error) {
	return platform.Open(ctx, cfg, opts...)
}

// Dial connects to a server.
func Dial(ctx context.Context, addr string) (*Client, error) {
	return client.Dial(ctx, addr)
}

// FindRoot looks upwards from startDir for a directory with a config file.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
