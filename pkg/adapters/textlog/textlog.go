// Package textlog stores the write-ahead log as CSV, one record per line:
//
//	command,object,key,value,other
//
// Keys and values are quoted when needed, so a value containing a newline
// spans several physical lines but is still read back as one record. A
// replay fails if the file does not end with a newline.
package textlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aretw0/lattice/pkg/core"
)

const fieldsPerRecord = 5

// Config holds the configuration for a text log.
type Config struct {
	Path   string
	Sync   bool
	Logger *slog.Logger
}

// Log implements core.Log on a CSV file.
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
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create log directory: %w", core.ErrStorageIO, err)
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open log file %q: %w", core.ErrStorageIO, cfg.Path, err)
	}

	cfg.Logger.Debug("opened text log", "path", cfg.Path, "sync", cfg.Sync)
	return &Log{path: cfg.Path, sync: cfg.Sync, file: file, logger: cfg.Logger}, nil
}

// Marshal renders tx as one CSV record, including the trailing newline.
func Marshal(tx core.Transaction) ([]byte, error) {
	r := core.Flatten(tx)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.Write([]string{
		strconv.FormatUint(uint64(r.Command), 10),
		r.Object.String(),
		r.Key,
		r.Value,
		r.Other.String(),
	})
	if err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the fields of one CSV record.
func Unmarshal(fields []string) (core.Transaction, error) {
	if len(fields) != fieldsPerRecord {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", core.ErrMalformedTransaction, fieldsPerRecord, len(fields))
	}

	cmd, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: command %q: %w", core.ErrMalformedTransaction, fields[0], err)
	}
	obj, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: object %q: %w", core.ErrMalformedTransaction, fields[1], err)
	}
	other, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: other %q: %w", core.ErrMalformedTransaction, fields[4], err)
	}

	return core.Record{
		Command: core.Command(cmd),
		Object:  core.ID(obj),
		Key:     fields[2],
		Value:   fields[3],
		Other:   core.ID(other),
	}.Transaction()
}

// Append writes one record.
func (l *Log) Append(ctx context.Context, tx core.Transaction) error {
	line, err := Marshal(tx)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", core.ErrStorageIO, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("%w: log %q is closed", core.ErrStorageIO, l.path)
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("%w: append to %q: %w", core.ErrStorageIO, l.path, err)
	}
	if l.sync {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("%w: sync %q: %w", core.ErrStorageIO, l.path, err)
		}
	}
	return nil
}

// Replay yields records in file order until end of stream.
func (l *Log) Replay(ctx context.Context) iter.Seq2[core.Transaction, error] {
	return func(yield func(core.Transaction, error) bool) {
		f, err := os.Open(l.path)
		if err != nil {
			yield(nil, fmt.Errorf("%w: failed to open log file %q: %w", core.ErrStorageIO, l.path, err))
			return
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = fieldsPerRecord
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				if err := checkTail(f); err != nil {
					yield(nil, err)
				}
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", core.ErrStorageIO, err))
				return
			}

			tx, err := Unmarshal(fields)
			if err != nil {
				line, _ := r.FieldPos(0)
				yield(nil, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// checkTail fails when the last record lacks its newline. Such a record
// parses but may have lost the end of its final field.
func checkTail(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageIO, err)
	}
	if info.Size() == 0 {
		return nil
	}
	var last [1]byte
	if _, err := f.ReadAt(last[:], info.Size()-1); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageIO, err)
	}
	if last[0] != '\n' {
		return fmt.Errorf("%w: unterminated record at end of %q", core.ErrStorageIO, f.Name())
	}
	return nil
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

var _ core.Log = (*Log)(nil)
