package core

import "fmt"

// Command identifies the kind of a Transaction. The numeric values are part
// of the wire and log formats.
type Command uint8

const (
	CmdCreate Command = 0
	CmdSet    Command = 1
	CmdGet    Command = 2
	CmdLink   Command = 3
	CmdGetRaw Command = 4
)

func (c Command) String() string {
	switch c {
	case CmdCreate:
		return "create"
	case CmdSet:
		return "set"
	case CmdGet:
		return "get"
	case CmdLink:
		return "link"
	case CmdGetRaw:
		return "getraw"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	return c <= CmdGetRaw
}

// IsWrite reports whether c mutates the store.
func (c Command) IsWrite() bool {
	return c == CmdCreate || c == CmdSet || c == CmdLink
}

// Transaction is the unit of work and of logging. It is a closed set of
// variants: Create, Set, Get, GetRaw and Link.
type Transaction interface {
	Command() Command
	isTransaction()
}

// Create allocates a new top-level entity.
type Create struct{}

// Set interns Value and binds it to Key on Object.
type Set struct {
	Object ID
	Key    string
	Value  string
}

// Get reads the node at Key, expanding nested entities recursively.
type Get struct {
	Object ID
	Key    string
}

// GetRaw reads the node at Key, rendering nested entities as bare identifiers.
type GetRaw struct {
	Object ID
	Key    string
}

// Link binds Other to Key on Object. Other is not required to exist.
type Link struct {
	Object ID
	Key    string
	Other  ID
}

func (Create) Command() Command { return CmdCreate }
func (Set) Command() Command    { return CmdSet }
func (Get) Command() Command    { return CmdGet }
func (GetRaw) Command() Command { return CmdGetRaw }
func (Link) Command() Command   { return CmdLink }

func (Create) isTransaction() {}
func (Set) isTransaction()    {}
func (Get) isTransaction()    {}
func (GetRaw) isTransaction() {}
func (Link) isTransaction()   {}

// Record is the flat five-field shape shared by the wire codec and the log
// encodings. Fields a command does not use are zero.
type Record struct {
	Command Command
	Object  ID
	Key     string
	Value   string
	Other   ID
}

// Flatten converts a Transaction to its Record form.
func Flatten(tx Transaction) Record {
	switch t := tx.(type) {
	case Create:
		return Record{Command: CmdCreate}
	case Set:
		return Record{Command: CmdSet, Object: t.Object, Key: t.Key, Value: t.Value}
	case Get:
		return Record{Command: CmdGet, Object: t.Object, Key: t.Key}
	case GetRaw:
		return Record{Command: CmdGetRaw, Object: t.Object, Key: t.Key}
	case Link:
		return Record{Command: CmdLink, Object: t.Object, Key: t.Key, Other: t.Other}
	default:
		panic(fmt.Sprintf("core: unknown transaction type %T", tx))
	}
}

// Transaction converts a Record back to its variant, ignoring fields the
// command does not use.
func (r Record) Transaction() (Transaction, error) {
	switch r.Command {
	case CmdCreate:
		return Create{}, nil
	case CmdSet:
		return Set{Object: r.Object, Key: r.Key, Value: r.Value}, nil
	case CmdGet:
		return Get{Object: r.Object, Key: r.Key}, nil
	case CmdGetRaw:
		return GetRaw{Object: r.Object, Key: r.Key}, nil
	case CmdLink:
		return Link{Object: r.Object, Key: r.Key, Other: r.Other}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported command %d", ErrMalformedTransaction, uint8(r.Command))
	}
}
