package server

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/pkg/wire"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 8

// options holds the internal configuration for a Server.
type options struct {
	logger       *slog.Logger
	workers      int
	maxFrameSize uint64
	registerer   prometheus.Registerer
}

// Option defines a functional option for configuring a Server.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		workers:      DefaultWorkers,
		maxFrameSize: wire.DefaultMaxFrameSize,
	}
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWorkers sets the number of connections served concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaxFrameSize bounds the size of a single request. Zero disables the limit.
func WithMaxFrameSize(n uint64) Option {
	return func(o *options) {
		o.maxFrameSize = n
	}
}

// WithRegisterer registers the server metrics with reg.
// Without it the collectors exist but are not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
