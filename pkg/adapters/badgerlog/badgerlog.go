// Package badgerlog stores the write-ahead log in BadgerDB. Every record
// is a key holding the big-endian sequence number of the append and a
// value holding the wire encoding of the transaction, so key order is
// append order.
package badgerlog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/wire"
)

var recordPrefix = []byte("tx/")

// Config holds the configuration for a Badger-backed log.
type Config struct {
	Path     string // directory; ignored when InMemory
	InMemory bool
	Sync     bool
	Logger   *slog.Logger
}

// Log implements core.Log on a BadgerDB instance.
type Log struct {
	db     *badger.DB
	mu     sync.Mutex
	seq    uint64
	logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the database and positions the sequence after the
// last stored record.
func Open(cfg Config) (*Log, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent log")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("%w: create log directory %s: %w", core.ErrStorageIO, cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.Sync).WithLogger(&badgerLogger{logger: cfg.Logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger log: %w", core.ErrStorageIO, err)
	}

	l := &Log{db: db, logger: cfg.Logger}
	if err := l.loadSequence(); err != nil {
		db.Close()
		return nil, err
	}
	cfg.Logger.Debug("opened badger log", "path", cfg.Path, "records", l.seq)
	return l, nil
}

func (l *Log) loadSequence() error {
	return l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the largest possible key under the prefix.
		seek := append(append([]byte{}, recordPrefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		it.Seek(seek)
		if it.ValidForPrefix(recordPrefix) {
			l.seq = sequenceOf(it.Item().Key())
		}
		return nil
	})
}

func recordKey(seq uint64) []byte {
	key := make([]byte, 0, len(recordPrefix)+8)
	key = append(key, recordPrefix...)
	return binary.BigEndian.AppendUint64(key, seq)
}

func sequenceOf(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(recordPrefix):])
}

// Append stores tx under the next sequence number.
func (l *Log) Append(ctx context.Context, tx core.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.seq + 1
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(next), wire.Encode(tx))
	})
	if err != nil {
		return fmt.Errorf("%w: append record %d: %w", core.ErrStorageIO, next, err)
	}
	l.seq = next
	return nil
}

// Replay yields records in sequence order from a read-only view.
func (l *Log) Replay(ctx context.Context) iter.Seq2[core.Transaction, error] {
	return func(yield func(core.Transaction, error) bool) {
		stopped := false
		err := l.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = recordPrefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.ValidForPrefix(recordPrefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					return fmt.Errorf("%w: read record %d: %w", core.ErrStorageIO, sequenceOf(item.Key()), err)
				}
				tx, err := wire.Decode(val)
				if err != nil {
					return fmt.Errorf("record %d: %w", sequenceOf(item.Key()), err)
				}
				if !yield(tx, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}

// Len returns the number of records appended so far.
func (l *Log) Len() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}

var _ core.Log = (*Log)(nil)
