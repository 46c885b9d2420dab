// Package file implements the guestbook backend as a flat JSON file.
//
// WHY A FLAT FILE?
// A guestbook holds dozens of entries, not millions. A pretty-printed JSON
// array in a file is inspectable with cat, diffable, restorable with cp, and
// needs zero infrastructure. The moment this stops being true, the Backend
// interface lets us swap in something heavier without touching the service.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/guestbook/internal/model"
	"github.com/sakif/guestbook/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X the compiler errors immediately, instead of at
// the first call site that happens to need the interface.
var _ repository.Backend = (*Backend)(nil)

// Backend persists the entry collection to a single JSON file.
type Backend struct {
	path   string
	logger *slog.Logger
}

// New creates a file backend writing to the given path.
func New(path string, logger *slog.Logger) *Backend {
	return &Backend{path: path, logger: logger}
}

// Load reads the JSON array from disk.
//
// RECOVERY POLICY (this is the backend of last resort, so it never gives up):
//   - file absent        → empty collection, no error (first run)
//   - invalid JSON / non-array → empty collection, no error, logged warning
//   - each record normalized (legacy files may lack ids, timestamps, likes)
//
// Only a genuine read failure on an existing file is returned as an error.
func (b *Backend) Load(_ context.Context) ([]model.Entry, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return []model.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: reading %s: %w", b.path, err)
	}

	entries, err := model.DecodeEntries(data)
	if err != nil {
		// A corrupt data file should not take the guestbook down.
		// Treat it as empty and leave the bad file on disk for inspection
		// (the next Save will overwrite it).
		b.logger.Warn("corrupt guestbook file, starting empty",
			slog.String("path", b.path),
			slog.String("error", err.Error()),
		)
		return []model.Entry{}, nil
	}
	return entries, nil
}

// Save writes the collection as a pretty-printed JSON array.
//
// Write failures ARE returned — unlike Load, a failed Save means a mutation
// the visitor just made would be lost on restart, and the handler should
// know about it. The in-memory collection is untouched either way.
func (b *Backend) Save(_ context.Context, entries []model.Entry) error {
	data, err := model.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("file: %w", err)
	}

	// MkdirAll is a no-op when the directory already exists.
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("file: creating data directory: %w", err)
	}

	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("file: writing %s: %w", b.path, err)
	}
	return nil
}
