package server

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/lattice/pkg/graph"
)

// State exposes internal state for observability.
type State struct {
	Workers           int         `json:"workers"`
	ActiveConnections int         `json:"active_connections"`
	Failed            bool        `json:"failed"`
	Error             string      `json:"error,omitempty"`
	Store             graph.Stats `json:"store"`
}

// State implements introspection.Introspectable.
func (s *Server) State() any {
	var stats graph.Stats
	s.View(func(st *graph.Store) {
		stats = st.Stats()
	})

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	state := State{
		Workers:           s.workers,
		ActiveConnections: len(s.active),
		Failed:            s.fatal != nil,
		Store:             stats,
	}
	if s.fatal != nil {
		state.Error = s.fatal.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Server) ComponentType() string {
	return "executor"
}

var _ introspection.Introspectable = (*Server)(nil)
var _ introspection.Component = (*Server)(nil)
