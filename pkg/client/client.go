// Package client is a small RPC wrapper over one persistent lattice
// connection. Calls on a Client are serialized.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/wire"
)

// Client sends transactions over a single connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to a lattice server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", core.ErrConnectionIO, addr, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends tx and waits for its response. The context deadline, if any,
// bounds the whole exchange.
func (c *Client) Do(ctx context.Context, tx core.Transaction) (core.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return core.Response{}, err
	}
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return core.Response{}, fmt.Errorf("%w: %w", core.ErrConnectionIO, err)
	}
	defer c.conn.SetDeadline(time.Time{})

	if err := wire.WriteFrame(c.conn, wire.Encode(tx)); err != nil {
		return core.Response{}, err
	}
	frame, err := wire.ReadFrame(c.r, wire.DefaultMaxFrameSize)
	if err != nil {
		return core.Response{}, fmt.Errorf("%w: reading %s response: %w", core.ErrConnectionIO, tx.Command(), err)
	}
	return wire.DecodeResponse(tx.Command(), frame)
}

// Create allocates an entity and returns its identifier.
func (c *Client) Create(ctx context.Context) (core.ID, error) {
	resp, err := c.Do(ctx, core.Create{})
	return resp.Object, err
}

// Set binds value to the dot-path key under obj.
func (c *Client) Set(ctx context.Context, obj core.ID, key, value string) (core.Response, error) {
	return c.Do(ctx, core.Set{Object: obj, Key: key, Value: value})
}

// Get reads key under obj, expanding nested entities.
func (c *Client) Get(ctx context.Context, obj core.ID, key string) (core.Response, error) {
	return c.Do(ctx, core.Get{Object: obj, Key: key})
}

// GetRaw reads key under obj, rendering nested entities as identifiers.
func (c *Client) GetRaw(ctx context.Context, obj core.ID, key string) (core.Response, error) {
	return c.Do(ctx, core.GetRaw{Object: obj, Key: key})
}

// Link points key under obj at the entity other.
func (c *Client) Link(ctx context.Context, obj core.ID, key string, other core.ID) (core.Response, error) {
	return c.Do(ctx, core.Link{Object: obj, Key: key, Other: other})
}
