package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/graph"
)

// Server executes transactions against one store and one log.
type Server struct {
	store *graph.Store
	log   core.Log
	mu    sync.RWMutex // guards store; the log has its own lock

	logger       *slog.Logger
	workers      int
	maxFrameSize uint64
	metrics      *metrics

	stateMu sync.Mutex
	fatal   error
	cancel  context.CancelCauseFunc
	active  map[string]net.Conn
}

// New creates a Server around store and log. The store is normally empty
// and filled by Recover.
func New(store *graph.Store, log core.Log, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Server{
		store:        store,
		log:          log,
		logger:       o.logger,
		workers:      o.workers,
		maxFrameSize: o.maxFrameSize,
		metrics:      newMetrics(o.registerer),
		active:       make(map[string]net.Conn),
	}
}

// Recover applies every logged write to the store in log order without
// logging it again. Reads found in older logs are skipped. It returns the
// number of transactions applied.
func (s *Server) Recover(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for tx, err := range s.log.Replay(ctx) {
		if err != nil {
			return n, fmt.Errorf("replay after %d transactions: %w", n, err)
		}
		if !tx.Command().IsWrite() {
			continue
		}
		if _, err := s.store.Apply(tx); err != nil {
			s.logger.Warn("replayed transaction failed", "index", n, "command", tx.Command().String(), "error", err)
		}
		n++
	}
	s.metrics.replayed.Add(float64(n))
	return n, nil
}

// Execute runs one transaction. Domain failures are reported in the
// response payload; the returned error is non-nil only when the log has
// failed, after which every transaction is refused.
func (s *Server) Execute(ctx context.Context, tx core.Transaction) (core.Response, error) {
	start := time.Now()
	cmd := tx.Command()

	if !cmd.IsWrite() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		// A failed append leaves its mutation in the store.
		if err := s.Err(); err != nil {
			return core.Response{}, err
		}
		resp, err := s.store.Apply(tx)
		if err != nil {
			s.logger.Debug("read resolved to null", "command", cmd.String(), "error", err)
		}
		s.metrics.observe(cmd, err, time.Since(start))
		return resp, nil
	}

	if err := s.Err(); err != nil {
		return core.Response{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another writer may have failed while this one waited for the lock.
	if err := s.Err(); err != nil {
		return core.Response{}, err
	}

	resp, err := s.store.Apply(tx)
	if err != nil {
		s.logger.Debug("write failed", "command", cmd.String(), "error", err)
		s.metrics.observe(cmd, err, time.Since(start))
		return resp, nil
	}
	if err := s.log.Append(ctx, tx); err != nil {
		return core.Response{}, s.fail(err)
	}
	s.metrics.observe(cmd, nil, time.Since(start))
	return resp, nil
}

// fail records the first storage error, stops serving and returns the
// recorded error.
func (s *Server) fail(err error) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.fatal != nil {
		return s.fatal
	}
	s.fatal = fmt.Errorf("%w: %w", core.ErrStorageIO, err)
	s.logger.Error("log append failed, refusing further transactions", "error", err)
	if s.cancel != nil {
		s.cancel(s.fatal)
	}
	return s.fatal
}

// Err returns the storage error that stopped the server, if any.
func (s *Server) Err() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.fatal
}

// View runs fn with shared access to the store.
func (s *Server) View(fn func(*graph.Store)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.store)
}
