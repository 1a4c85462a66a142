// Package graph holds the in-memory node table of a lattice store, the
// dot-path resolver built on top of it, and JSON rendering of sub-graphs.
//
// Store performs no locking. Callers serialize writers against readers.
package graph

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// Store owns every node, the scalar interning index and the identifier counter.
type Store struct {
	nodes    map[core.ID]core.Node
	interned map[string]core.ID
	lastID   core.ID
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		nodes:    make(map[core.ID]core.Node),
		interned: make(map[string]core.ID),
	}
}

func (s *Store) nextID() core.ID {
	s.lastID++
	return s.lastID
}

// Create allocates an empty entity and returns its identifier.
func (s *Store) Create() core.ID {
	id := s.nextID()
	s.nodes[id] = core.NewEntity()
	return id
}

// Intern returns the scalar holding value, creating it if needed.
func (s *Store) Intern(value string) core.ID {
	if id, ok := s.interned[value]; ok {
		return id
	}
	id := s.nextID()
	s.nodes[id] = &core.Scalar{Value: value}
	s.interned[value] = id
	return id
}

// Lookup returns the scalar identifier for value without creating one.
func (s *Store) Lookup(value string) (core.ID, bool) {
	id, ok := s.interned[value]
	return id, ok
}

func (s *Store) entity(obj core.ID) (*core.Entity, error) {
	node, ok := s.nodes[obj]
	if !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrNoSuchObject, obj)
	}
	ent, ok := node.(*core.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %d holds a value", core.ErrNotAnEntity, obj)
	}
	return ent, nil
}

// Set interns value and binds it to key on obj. It returns the scalar
// identifier. The store is unchanged when obj is absent or a scalar.
func (s *Store) Set(obj core.ID, key, value string) (core.ID, error) {
	ent, err := s.entity(obj)
	if err != nil {
		return core.NoObject, err
	}
	id := s.Intern(value)
	ent.Props[key] = id
	return id, nil
}

// Link binds other to key on obj. other may be dangling.
func (s *Store) Link(obj core.ID, key string, other core.ID) error {
	ent, err := s.entity(obj)
	if err != nil {
		return err
	}
	ent.Props[key] = other
	return nil
}

// Get returns the node bound to key on obj, or obj itself when key is
// empty. ok is false when obj is absent, obj is a scalar, the key is unset
// or its target is dangling.
func (s *Store) Get(obj core.ID, key string) (core.ID, core.Node, bool) {
	node, ok := s.nodes[obj]
	if !ok {
		return core.NoObject, nil, false
	}
	if key == "" {
		return obj, node, true
	}
	ent, ok := node.(*core.Entity)
	if !ok {
		return core.NoObject, nil, false
	}
	id, ok := ent.Props[key]
	if !ok {
		return core.NoObject, nil, false
	}
	target, ok := s.nodes[id]
	if !ok {
		return core.NoObject, nil, false
	}
	return id, target, true
}

// Node returns the node stored at id.
func (s *Store) Node(id core.ID) (core.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// LastID returns the most recently assigned identifier.
func (s *Store) LastID() core.ID {
	return s.lastID
}
