package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// Mode selects how nested entities are rendered.
type Mode int

const (
	// Expand inlines nested entities recursively. An entity already being
	// expanded higher up the same branch is emitted as its bare identifier.
	Expand Mode = iota
	// Shallow emits every nested entity as its bare identifier.
	Shallow
)

// Render serializes the node at id as JSON. Scalars become JSON strings,
// dangling targets become null.
func (s *Store) Render(id core.ID, mode Mode) (string, error) {
	v := s.value(id, mode, make(map[core.ID]struct{}), 0)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("render %d: %w", id, err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func (s *Store) value(id core.ID, mode Mode, inProgress map[core.ID]struct{}, depth int) any {
	node, ok := s.nodes[id]
	if !ok {
		return nil
	}

	switch n := node.(type) {
	case *core.Scalar:
		return n.Value
	case *core.Entity:
		if depth > 0 && mode == Shallow {
			return uint64(id)
		}
		if _, busy := inProgress[id]; busy {
			return uint64(id)
		}
		inProgress[id] = struct{}{}
		defer delete(inProgress, id)

		obj := make(map[string]any, len(n.Props))
		for name, target := range n.Props {
			obj[name] = s.value(target, mode, inProgress, depth+1)
		}
		return obj
	default:
		return nil
	}
}
