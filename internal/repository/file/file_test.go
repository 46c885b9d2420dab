package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakif/guestbook/internal/model"
)

// newTestBackend writes into a per-test temp directory. t.TempDir is created
// fresh for each test and removed automatically when the test finishes.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(filepath.Join(t.TempDir(), "entries.json"), logger)
}

func TestLoadMissingFile(t *testing.T) {
	b := newTestBackend(t)

	entries, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Load() on missing file returned %d entries, want 0", len(entries))
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	saved := []model.Entry{
		{ID: "a1", Name: "Ann", Text: "I love *** and ***", Timestamp: 1700000000000, Likes: 2, Owner: "client-a"},
		{ID: "b2", Name: "Ben", Text: "hello", Timestamp: 1700000001000, Likes: 0, Owner: "client-b"},
	}

	if err := b.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loaded) != len(saved) {
		t.Fatalf("round trip returned %d entries, want %d", len(loaded), len(saved))
	}
	for i := range saved {
		if loaded[i] != saved[i] {
			t.Errorf("entry %d = %+v, want %+v", i, loaded[i], saved[i])
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid JSON", `[{"id": "a1"`},
		{"non-array", `{"id":"a1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			if err := os.WriteFile(b.path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing corrupt file: %v", err)
			}

			entries, err := b.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() on corrupt file error = %v, want nil (treated as empty)", err)
			}
			if len(entries) != 0 {
				t.Errorf("Load() on corrupt file returned %d entries, want 0", len(entries))
			}
		})
	}
}

func TestSaveCreatesDataDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	path := filepath.Join(t.TempDir(), "nested", "dir", "entries.json")
	b := New(path, logger)

	if err := b.Save(context.Background(), []model.Entry{}); err != nil {
		t.Fatalf("Save() into missing directory error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Save() did not create %s: %v", path, err)
	}
}

func TestSaveEmptyCollectionWritesArray(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Save(nil) wrote %q, want %q", data, "[]")
	}
}
