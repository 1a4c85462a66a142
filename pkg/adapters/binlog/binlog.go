// Package binlog stores the write-ahead log as a flat file of
// length-prefixed binary transaction records.
//
// Each record is an 8-byte little-endian length followed by the wire
// encoding of one transaction. A scan stops at end of file or at a
// zero-length prefix. A record cut short anywhere, including inside its
// length prefix, fails the scan.
package binlog

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/wire"
)

// Config holds the configuration for a binary log.
type Config struct {
	Path   string
	Sync   bool // fsync after every append
	Logger *slog.Logger
}

// Log implements core.Log on a single append-only file.
type Log struct {
	path   string
	sync   bool
	file   *os.File
	mu     sync.Mutex
	logger *slog.Logger
}

// Open creates the file if needed and opens it for appending.
func Open(cfg Config) (*Log, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create log directory: %w", core.ErrStorageIO, err)
		}
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open log file %q: %w", core.ErrStorageIO, cfg.Path, err)
	}

	cfg.Logger.Debug("opened binary log", "path", cfg.Path, "sync", cfg.Sync)
	return &Log{
		path:   cfg.Path,
		sync:   cfg.Sync,
		file:   file,
		logger: cfg.Logger,
	}, nil
}

// Append writes one framed record in a single write.
func (l *Log) Append(ctx context.Context, tx core.Transaction) error {
	payload := wire.Encode(tx)
	buf := make([]byte, 0, wire.UintSize+len(payload))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(payload)))
	buf = append(buf, payload...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("%w: log %q is closed", core.ErrStorageIO, l.path)
	}
	if _, err := l.file.Write(buf); err != nil {
		return fmt.Errorf("%w: append to %q: %w", core.ErrStorageIO, l.path, err)
	}
	if l.sync {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("%w: sync %q: %w", core.ErrStorageIO, l.path, err)
		}
	}
	return nil
}

// Replay opens an independent read handle and yields records in file order.
func (l *Log) Replay(ctx context.Context) iter.Seq2[core.Transaction, error] {
	return func(yield func(core.Transaction, error) bool) {
		f, err := os.Open(l.path)
		if err != nil {
			yield(nil, fmt.Errorf("%w: failed to open log file %q: %w", core.ErrStorageIO, l.path, err))
			return
		}
		defer f.Close()

		r := bufio.NewReader(f)
		var offset int64
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			tx, n, err := readRecord(r)
			if err != nil {
				yield(nil, fmt.Errorf("record at offset %d: %w", offset, err))
				return
			}
			if tx == nil {
				return
			}
			offset += n
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// readRecord returns a nil transaction at the end of the log.
func readRecord(r io.Reader) (core.Transaction, int64, error) {
	var hdr [wire.UintSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: torn length prefix: %w", core.ErrStorageIO, err)
		}
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: %w", core.ErrStorageIO, err)
	}

	size := binary.LittleEndian.Uint64(hdr[:])
	if size == 0 {
		return nil, 0, nil
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, 0, fmt.Errorf("%w: truncated record of %d bytes: %w", core.ErrStorageIO, size, err)
	}

	tx, err := wire.Decode(body)
	if err != nil {
		return nil, 0, err
	}
	return tx, int64(wire.UintSize) + int64(size), nil
}

// Close closes the append handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

var _ core.Log = (*Log)(nil)
