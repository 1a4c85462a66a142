package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/core"
)

// Segments splits a dotted key into path segments. The empty key has no
// segments and addresses the object itself. An empty segment inside a path
// ("a..b") also stays on the current node.
func Segments(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

// Resolve walks key from obj one segment at a time. On success it returns
// the node reached by the last segment (or obj itself for an empty key).
// On failure it returns the last identifier that did resolve, or NoObject.
func (s *Store) Resolve(obj core.ID, key string) (core.ID, core.Node, error) {
	segs := Segments(key)
	if len(segs) == 0 {
		id, node, ok := s.Get(obj, "")
		if !ok {
			return core.NoObject, nil, fmt.Errorf("%w: %d", core.ErrNoSuchObject, obj)
		}
		return id, node, nil
	}
	return s.walk(obj, segs)
}

func (s *Store) walk(obj core.ID, segs []string) (core.ID, core.Node, error) {
	if _, ok := s.nodes[obj]; !ok {
		return core.NoObject, nil, fmt.Errorf("%w: %d", core.ErrNoSuchObject, obj)
	}

	resolved := core.NoObject
	cur := obj
	var node core.Node
	for i, seg := range segs {
		id, next, ok := s.Get(cur, seg)
		if !ok {
			return resolved, nil, fmt.Errorf("%w: segment %d (%q) from %d", core.ErrPathBroken, i, seg, cur)
		}
		resolved, cur, node = id, id, next
	}
	return resolved, node, nil
}

// parent resolves every segment of key but the last and returns the
// identifier reached together with the final segment.
func (s *Store) parent(obj core.ID, key string) (core.ID, string, error) {
	segs := Segments(key)
	if len(segs) <= 1 {
		return obj, key, nil
	}
	id, _, err := s.walk(obj, segs[:len(segs)-1])
	if err != nil {
		return core.NoObject, "", err
	}
	return id, segs[len(segs)-1], nil
}

// SetPath sets the last segment of key on the entity reached by the rest of
// the path. Nothing changes if any prefix segment fails to resolve.
func (s *Store) SetPath(obj core.ID, key, value string) (core.ID, error) {
	parent, leaf, err := s.parent(obj, key)
	if err != nil {
		return core.NoObject, err
	}
	return s.Set(parent, leaf, value)
}

// LinkPath links other under the last segment of key, like SetPath.
func (s *Store) LinkPath(obj core.ID, key string, other core.ID) error {
	parent, leaf, err := s.parent(obj, key)
	if err != nil {
		return err
	}
	return s.Link(parent, leaf, other)
}

// Read resolves key from obj and renders the result: a scalar as its raw
// string, an entity as a JSON object. A failed resolution yields "null".
func (s *Store) Read(obj core.ID, key string, mode Mode) (core.Response, error) {
	id, node, err := s.Resolve(obj, key)
	if err != nil {
		return core.Response{Object: id, Payload: core.PayloadNull}, err
	}

	switch n := node.(type) {
	case *core.Scalar:
		return core.Response{Object: id, Payload: n.Value}, nil
	default:
		payload, err := s.Render(id, mode)
		if err != nil {
			return core.Response{Object: id, Payload: core.PayloadNull}, err
		}
		return core.Response{Object: id, Payload: payload}, nil
	}
}
