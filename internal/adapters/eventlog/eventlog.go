// Package eventlog implements the append-only interaction event log.
//
// The log is the source of truth: one JSON object per line, written in
// arrival order, never rewritten. Appends are best-effort durable; a
// failed append degrades, it never blocks or fails the in-memory state
// transition upstream.
package eventlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/veloce/artrank/internal/domain/model"
)

// Durability reports whether an append reached the log file.
type Durability string

// Append outcomes.
const (
	Durable  Durability = "durable"
	Degraded Durability = "degraded"
)

// Log is a line-oriented append-only file log.
type Log struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Open opens (or creates) the log file for appending.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &Log{path: path, f: f}, nil
}

// Append writes one event as a single line. The returned error is
// informational; callers log it and move on, the Durability value is
// the contract.
func (l *Log) Append(ctx context.Context, e model.Event) (Durability, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return Degraded, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return Degraded, ErrLogClosed
	}
	if _, err := l.f.Write(line); err != nil {
		return Degraded, fmt.Errorf("append event %s: %w", e.ID, err)
	}
	return Durable, nil
}

// ReadTail returns up to maxBytes from the end of the log, aligned to a
// line boundary: when the read starts mid-line the partial first line
// is dropped.
func (l *Log) ReadTail(ctx context.Context, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return nil, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open event log for tail: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat event log: %w", err)
	}

	offset := st.Size() - maxBytes
	truncated := offset > 0
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek event log: %w", err)
	}

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read event log tail: %w", err)
	}

	if truncated {
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			buf = buf[i+1:]
		} else {
			buf = nil
		}
	}
	return buf, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Close flushes and closes the log file. Appends after Close degrade.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
