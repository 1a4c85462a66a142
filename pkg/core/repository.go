package core

import (
	"context"
	"iter"
)

// Log is the append-only durable record of mutating transactions.
// Implementations serialize concurrent Append calls internally.
type Log interface {
	// Append writes one record. Existing records are never rewritten.
	Append(ctx context.Context, tx Transaction) error

	// Replay scans the log from the start. Each call starts a fresh scan.
	// A non-nil error ends the sequence.
	Replay(ctx context.Context) iter.Seq2[Transaction, error]

	// Close releases the underlying storage.
	Close() error
}

// Format names a physical log encoding.
type Format string

const (
	FormatBinary Format = "bin"
	FormatText   Format = "text"
	FormatBadger Format = "badger"
)
