// Package core defines the domain of the lattice object store.
//
// The store is a graph of nodes addressed by numeric identifiers. A node is
// either an Entity (a mutable set of named properties pointing at other
// nodes) or a Scalar (an immutable, interned string).
package core

import "strconv"

// ID identifies a node. Identifiers are assigned monotonically starting at 1.
// The zero value means "no object".
type ID uint64

// NoObject is the reserved absent identifier.
const NoObject ID = 0

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Node is either an *Entity or a *Scalar.
type Node interface {
	isNode()
}

// Entity is a mutable node holding named properties that reference other nodes.
type Entity struct {
	Props map[string]ID
}

// NewEntity returns an Entity with no properties.
func NewEntity() *Entity {
	return &Entity{Props: make(map[string]ID)}
}

// Scalar is an immutable, content-addressed string value.
type Scalar struct {
	Value string
}

func (*Entity) isNode() {}
func (*Scalar) isNode() {}

// Response is the result of executing a Transaction.
// Create responses carry only Object; every other command carries a payload.
type Response struct {
	Object  ID
	Payload string
}

// Canonical response payloads.
const (
	PayloadOK   = "ok"
	PayloadFail = "fail"
	PayloadNull = "null"
)
