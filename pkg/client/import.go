package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/aretw0/lattice/pkg/core"
)

// ErrNotContainer is returned when an imported document is a bare scalar.
var ErrNotContainer = errors.New("document root must be an object or an array")

// ImportJSON stores a JSON document as a sub-graph and returns the root
// entity. Objects and arrays become entities, array elements are keyed by
// index, and every other value is stored in its JSON text form. Keys are
// sent as-is, so a key containing a dot is resolved as a path.
func (c *Client) ImportJSON(ctx context.Context, r io.Reader) (core.ID, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return core.NoObject, fmt.Errorf("decode json: %w", err)
	}
	switch doc.(type) {
	case map[string]any, []any:
	default:
		return core.NoObject, ErrNotContainer
	}
	return c.importValue(ctx, doc)
}

func (c *Client) importValue(ctx context.Context, v any) (core.ID, error) {
	id, err := c.Create(ctx)
	if err != nil {
		return core.NoObject, err
	}

	switch v := v.(type) {
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			if err := c.importProperty(ctx, id, key, v[key]); err != nil {
				return core.NoObject, err
			}
		}
	case []any:
		for i, elem := range v {
			if err := c.importProperty(ctx, id, strconv.Itoa(i), elem); err != nil {
				return core.NoObject, err
			}
		}
	}
	return id, nil
}

func (c *Client) importProperty(ctx context.Context, obj core.ID, key string, v any) error {
	var resp core.Response
	switch v.(type) {
	case map[string]any, []any:
		child, err := c.importValue(ctx, v)
		if err != nil {
			return err
		}
		if resp, err = c.Link(ctx, obj, key, child); err != nil {
			return err
		}
	default:
		var err error
		if resp, err = c.Set(ctx, obj, key, scalarText(v)); err != nil {
			return err
		}
	}
	if resp.Payload != core.PayloadOK {
		return fmt.Errorf("store %q on %d: server answered %q", key, obj, resp.Payload)
	}
	return nil
}

func scalarText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
