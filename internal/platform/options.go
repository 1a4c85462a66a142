package platform

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/pkg/core"
)

// options holds settings that override or extend a Config at Open time.
type options struct {
	log        core.Log
	logger     *slog.Logger
	registerer prometheus.Registerer
	overrides  []func(*Config)
}

// Option defines a functional option for Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger handed to the log adapter and the server.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLog injects an already opened log. Storage settings in the Config
// and the format guard are then skipped.
func WithLog(l core.Log) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithRegisterer exports server metrics through reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithStoragePath overrides the log location.
func WithStoragePath(path string) Option {
	return override(func(c *Config) { c.StoragePath = path })
}

// WithFormat overrides the log encoding.
func WithFormat(f core.Format) Option {
	return override(func(c *Config) { c.LogFormat = f })
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return override(func(c *Config) { c.Workers = n })
}

// WithSync overrides whether every append is fsynced.
func WithSync(enabled bool) Option {
	return override(func(c *Config) { c.Sync = enabled })
}

func override(fn func(*Config)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}
