package graph

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// Apply executes tx against the store and builds its response. A non-nil
// error reports why a write failed or a read resolved to nothing; the
// response already carries the matching "fail" or "null" payload.
func (s *Store) Apply(tx core.Transaction) (core.Response, error) {
	switch t := tx.(type) {
	case core.Create:
		return core.Response{Object: s.Create()}, nil

	case core.Set:
		id, err := s.SetPath(t.Object, t.Key, t.Value)
		if err != nil {
			return core.Response{Payload: core.PayloadFail}, err
		}
		return core.Response{Object: id, Payload: core.PayloadOK}, nil

	case core.Link:
		if err := s.LinkPath(t.Object, t.Key, t.Other); err != nil {
			return core.Response{Payload: core.PayloadFail}, err
		}
		return core.Response{Payload: core.PayloadOK}, nil

	case core.Get:
		return s.Read(t.Object, t.Key, Expand)

	case core.GetRaw:
		return s.Read(t.Object, t.Key, Shallow)

	default:
		return core.Response{Payload: core.PayloadFail}, fmt.Errorf("%w: %T", core.ErrMalformedTransaction, tx)
	}
}
