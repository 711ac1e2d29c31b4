// Package file implements a local filesystem-backed data source for raw
// export files.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DefaultMaxBytes caps how much of an export file is read. Real exports are
// single-digit megabytes; the cap keeps a mistakenly configured path (a dump,
// a log) from ballooning memory.
const DefaultMaxBytes = 64 << 20

// Local is a filesystem data source bound to one path. It is safe for
// concurrent use as long as the path is valid for concurrent reads.
type Local struct {
	path     string
	maxBytes int64
}

// NewLocal returns a Local data source for path. maxBytes <= 0 selects
// DefaultMaxBytes.
func NewLocal(path string, maxBytes int64) *Local {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Local{path: path, maxBytes: maxBytes}
}

// Open opens the configured path for reading. A canceled context returns the
// context error without touching the filesystem; filesystem errors are
// wrapped with the path while keeping errors.Is(err, os.ErrNotExist) checks
// working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// ErrTooLarge marks an input exceeding the configured byte cap.
type ErrTooLarge struct {
	Path string
	Max  int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("input %s exceeds the %d byte limit", e.Path, e.Max)
}

// Read slurps the whole export, enforcing the byte cap.
func (l *Local) Read(ctx context.Context) ([]byte, error) {
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, &ErrTooLarge{Path: l.path, Max: l.maxBytes}
	}
	return data, nil
}
