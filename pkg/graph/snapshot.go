package graph

import (
	"maps"

	"github.com/aretw0/lattice/pkg/core"
)

// Snapshot is a detached copy of the store contents.
type Snapshot struct {
	Entities map[core.ID]map[string]core.ID
	Scalars  map[core.ID]string
	Interned map[string]core.ID
	LastID   core.ID
}

// Snapshot copies the store. The caller must hold at least a read lock.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Entities: make(map[core.ID]map[string]core.ID),
		Scalars:  make(map[core.ID]string),
		Interned: maps.Clone(s.interned),
		LastID:   s.lastID,
	}
	for id, node := range s.nodes {
		switch n := node.(type) {
		case *core.Entity:
			snap.Entities[id] = maps.Clone(n.Props)
		case *core.Scalar:
			snap.Scalars[id] = n.Value
		}
	}
	return snap
}

// Stats summarizes the store for observability.
type Stats struct {
	Nodes    int     `json:"nodes"`
	Entities int     `json:"entities"`
	Scalars  int     `json:"scalars"`
	LastID   core.ID `json:"last_id"`
}

// Stats counts nodes by kind. The caller must hold at least a read lock.
func (s *Store) Stats() Stats {
	st := Stats{Nodes: len(s.nodes), Scalars: len(s.interned), LastID: s.lastID}
	st.Entities = st.Nodes - st.Scalars
	return st
}
