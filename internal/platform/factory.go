package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/lattice/pkg/adapters/badgerlog"
	"github.com/aretw0/lattice/pkg/adapters/binlog"
	"github.com/aretw0/lattice/pkg/adapters/textlog"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/server"
)

// ErrFormatMismatch is returned when the configured log format differs
// from the one the storage was created with.
var ErrFormatMismatch = errors.New("log format mismatch")

// Instance is a recovered server together with the log it owns.
type Instance struct {
	Config   Config
	Log      core.Log
	Server   *server.Server
	Replayed int
}

// Close releases the log.
func (i *Instance) Close() error {
	return i.Log.Close()
}

// Open wires Config to a log, an empty store and a server, then replays
// the log into the store.
//
//	inst, err := platform.Open(ctx, cfg, platform.WithLogger(logger))
func Open(ctx context.Context, cfg Config, opts ...Option) (*Instance, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	for _, fn := range o.overrides {
		fn(&cfg)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := o.log
	if l == nil {
		var err error
		if l, err = OpenLog(cfg, o.logger); err != nil {
			return nil, err
		}
	}

	srv := server.New(graph.New(), l,
		server.WithLogger(o.logger),
		server.WithWorkers(cfg.Workers),
		server.WithMaxFrameSize(cfg.MaxFrameSize),
		server.WithRegisterer(o.registerer),
	)

	n, err := srv.Recover(ctx)
	if err != nil {
		l.Close()
		return nil, err
	}
	o.logger.Info("log replayed", "transactions", n, "path", cfg.StoragePath, "format", cfg.LogFormat)

	return &Instance{Config: cfg, Log: l, Server: srv, Replayed: n}, nil
}

// OpenLog opens the log adapter selected by cfg.LogFormat after checking
// the storage was not created with another format.
func OpenLog(cfg Config, logger *slog.Logger) (core.Log, error) {
	if err := checkFormat(cfg.StoragePath, cfg.LogFormat); err != nil {
		return nil, err
	}

	switch cfg.LogFormat {
	case core.FormatBinary:
		return binlog.Open(binlog.Config{Path: cfg.StoragePath, Sync: cfg.Sync, Logger: logger})
	case core.FormatText:
		return textlog.Open(textlog.Config{Path: cfg.StoragePath, Sync: cfg.Sync, Logger: logger})
	case core.FormatBadger:
		return badgerlog.Open(badgerlog.Config{Path: cfg.StoragePath, Sync: cfg.Sync, Logger: logger})
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.LogFormat)
	}
}

// formatPath is the sidecar file recording the format of the log at path.
func formatPath(path string) string {
	return path + ".format"
}

// checkFormat compares f with the recorded format, recording it first
// if nothing was recorded yet.
func checkFormat(path string, f core.Format) error {
	data, err := os.ReadFile(formatPath(path))
	if errors.Is(err, os.ErrNotExist) {
		if err := writeFileAtomic(formatPath(path), []byte(string(f)+"\n"), 0644); err != nil {
			return fmt.Errorf("%w: %w", core.ErrStorageIO, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageIO, err)
	}

	recorded := core.Format(strings.TrimSpace(string(data)))
	if recorded != f {
		return fmt.Errorf("%w: %s was written as %q, configured %q", ErrFormatMismatch, path, recorded, f)
	}
	return nil
}
