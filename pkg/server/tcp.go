package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime/debug"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/wire"
)

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or a write cannot be
// logged. Accepted connections wait for a free worker, so at most the
// configured number of connections are served at once. Serve closes ln and
// every active connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.stateMu.Lock()
	if s.fatal != nil {
		s.stateMu.Unlock()
		ln.Close()
		return s.fatal
	}
	s.cancel = cancel
	s.stateMu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeActive()
	})
	defer stop()

	conns := make(chan net.Conn)
	var g errgroup.Group
	for range s.workers {
		g.Go(func() error {
			for conn := range conns {
				s.serveConn(ctx, conn)
			}
			return nil
		})
	}

	s.logger.Info("listener started", "addr", ln.Addr().String(), "workers", s.workers)

	var acceptErr error
	for ctx.Err() == nil {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				continue
			}
			acceptErr = err
			break
		}

		select {
		case conns <- conn:
		case <-ctx.Done():
			conn.Close()
		}
	}

	close(conns)
	cancel(acceptErr)
	_ = g.Wait()

	s.logger.Info("listener stopped", "addr", ln.Addr().String())

	if err := s.Err(); err != nil {
		return err
	}
	if acceptErr != nil {
		return fmt.Errorf("accept: %w", acceptErr)
	}
	return nil
}

// serveConn runs the request loop of one connection on the calling worker.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	logger := s.logger.With("conn", id, "remote", conn.RemoteAddr().String())

	if !s.track(ctx, id, conn) {
		conn.Close()
		return
	}
	s.metrics.connections.Inc()
	defer func() {
		s.metrics.connections.Dec()
		s.untrack(id)
		conn.Close()
	}()
	defer func() {
		if r := recover(); r != nil {
			attrs := []any{"error", fmt.Sprint(r)}
			if logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			logger.Error("connection panic", attrs...)
		}
	}()

	logger.Debug("connection accepted")

	err := s.session(ctx, conn)
	switch {
	case err == nil:
		logger.Debug("connection closed")
	case ctx.Err() != nil:
		logger.Debug("connection closed on shutdown")
	case errors.Is(err, core.ErrStorageIO):
		logger.Error("connection aborted by storage failure", "error", err)
	default:
		logger.Warn("connection terminated", "error", err)
	}
}

// session handles sequential request/response cycles until the peer
// closes the connection. A malformed request or an I/O failure ends it.
func (s *Server) session(ctx context.Context, conn net.Conn) error {
	r := bufio.NewReader(conn)
	for {
		frame, err := wire.ReadFrame(r, s.maxFrameSize)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		tx, err := wire.Decode(frame)
		if err != nil {
			return err
		}

		resp, err := s.Execute(ctx, tx)
		if err != nil {
			return err
		}

		if err := wire.WriteFrame(conn, wire.EncodeResponse(tx.Command(), resp)); err != nil {
			return err
		}
	}
}

// track registers conn for shutdown. It refuses once ctx is done, since
// closeActive may already have run.
func (s *Server) track(ctx context.Context, id string, conn net.Conn) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.active[id] = conn
	return true
}

func (s *Server) untrack(id string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	delete(s.active, id)
}

func (s *Server) closeActive() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for _, conn := range s.active {
		conn.Close()
	}
}
