// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses/redirects
//	Service (Business layer) → owns the collection, enforces the rules
//	Repository (Data layer)  → loads/saves the persisted copy
//
// The service holds the CANONICAL in-memory entry collection. The persisted
// copy (file or remote object store) is just a durability mirror, rewritten
// after every mutation that actually changed something. This inversion —
// memory is the source of truth, storage is the backup — is what keeps a
// guestbook this simple: reads never touch storage at all.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sakif/guestbook/internal/apperror"
	"github.com/sakif/guestbook/internal/model"
	"github.com/sakif/guestbook/internal/repository"
	"github.com/sakif/guestbook/internal/sanitize"
)

// Validation constants.
const (
	MaxNameLength = 80
	MaxTextLength = 2000
)

// Guestbook owns the entry collection and its persisted copy.
//
// CONCURRENCY MODEL — TWO LOCKS WITH DIFFERENT JOBS:
//
//   - writeMu serializes whole MUTATIONS: find the entry, change it, persist.
//     Held across the backend call, so two racing likes (or a like racing a
//     delete) interleave at operation granularity and never persist stale
//     snapshots over fresh ones.
//
//   - mu guards the SLICE itself. Mutations hold it only for the in-memory
//     change; snapshot reads take the read lock. The listing therefore never
//     waits on a slow persistence call from someone else's mutation — the
//     longest a read can block is the microseconds of an in-memory splice.
//
// LOCK ORDER: writeMu before mu, always. Never call the backend with mu held.
type Guestbook struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	entries []model.Entry
	backend repository.Backend
	logger  *slog.Logger
}

// New creates a Guestbook persisting through the given backend.
// The collection starts empty — call Load to populate it.
func New(backend repository.Backend, logger *slog.Logger) *Guestbook {
	return &Guestbook{
		entries: []model.Entry{},
		backend: backend,
		logger:  logger,
	}
}

// Load populates the collection from the backend.
//
// Called from server startup in a goroutine, so the guestbook serves an
// empty listing until the load completes rather than blocking startup on a
// slow remote store. Load NEVER propagates an error to request handling:
// the fallback decorator and the file backend between them recover from
// everything recoverable, and if the backend still fails we log it and run
// with an empty collection — worst case, a fresh guestbook.
//
// writeMu is held ACROSS the backend read, not just the assignment. A
// mutation arriving mid-load therefore queues behind it instead of appending
// to the pre-load collection and being clobbered when Load replaces the
// slice. Reads stay unblocked throughout (they see the empty collection).
func (g *Guestbook) Load(ctx context.Context) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	entries, err := g.backend.Load(ctx)
	if err != nil {
		g.logger.Error("loading guestbook entries, starting empty",
			slog.String("error", err.Error()),
		)
		entries = []model.Entry{}
	}

	g.mu.Lock()
	g.entries = entries
	g.mu.Unlock()

	g.logger.Info("guestbook loaded", slog.Int("entries", len(entries)))
}

// Add sanitizes and appends a new entry, then persists.
//
// THE SILENT DROP:
// If the message consists of nothing but denylisted terms and whitespace,
// the sanitized text trims to empty (or to bare masks) and the submission is
// discarded without an error — (nil, nil). The visitor is redirected back to
// the listing as if the post succeeded. Punishing someone for posting
// "python python python" with an error page would be more ceremony than the
// joke deserves.
//
// A persistence failure returns an error, but the entry STAYS in memory —
// the collection is never rolled back, the visitor just gets told the write
// didn't stick.
func (g *Guestbook) Add(ctx context.Context, name, rawText, owner string) (*model.Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultName
	}
	name = truncate(name, MaxNameLength)
	rawText = truncate(rawText, MaxTextLength)

	text := strings.TrimSpace(sanitize.Clean(rawText))
	if isEmptyAfterSanitize(text) {
		g.logger.Info("submission dropped, empty after sanitization")
		return nil, nil
	}

	entry := model.Entry{
		ID:        model.NewID(),
		Name:      name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Likes:     0,
		Owner:     owner,
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	g.entries = append(g.entries, entry)
	g.mu.Unlock()

	if err := g.persist(ctx); err != nil {
		return nil, err
	}

	g.logger.Info("entry added",
		slog.String("id", entry.ID),
		slog.String("name", entry.Name),
	)
	return &entry, nil
}

// Like increments an entry's like counter and persists.
// An unknown id is a no-op: apperror.NotFound is returned for the caller's
// bookkeeping, and nothing is persisted.
func (g *Guestbook) Like(ctx context.Context, id string) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	i := g.indexOf(id)
	if i < 0 {
		g.mu.Unlock()
		return apperror.NotFound("entry", id)
	}
	g.entries[i].Likes++
	g.mu.Unlock()

	return g.persist(ctx)
}

// Unlike decrements an entry's like counter, floored at zero, and persists.
// Unknown id, or an entry already at zero likes, is a no-op (no save).
func (g *Guestbook) Unlike(ctx context.Context, id string) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	i := g.indexOf(id)
	if i < 0 {
		g.mu.Unlock()
		return apperror.NotFound("entry", id)
	}
	if g.entries[i].Likes == 0 {
		// Already at the floor — the collection didn't change, so don't
		// rewrite the backend.
		g.mu.Unlock()
		return nil
	}
	g.entries[i].Likes--
	g.mu.Unlock()

	return g.persist(ctx)
}

// Delete removes an entry, but only for its owner.
//
// THE PRIVACY PROPERTY:
// "No such entry" and "that entry belongs to someone else" are DIFFERENT
// sentinels internally (NotFound vs Forbidden — tests and debug logs care),
// but the handler maps both to the identical redirect. A caller probing ids
// learns nothing about whether other visitors' entries exist. Neither case
// touches the backend.
func (g *Guestbook) Delete(ctx context.Context, id, owner string) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	i := g.indexOf(id)
	if i < 0 {
		g.mu.Unlock()
		return apperror.NotFound("entry", id)
	}
	if g.entries[i].Owner == "" || g.entries[i].Owner != owner {
		g.mu.Unlock()
		return apperror.Forbidden("entry belongs to a different client")
	}
	g.entries = append(g.entries[:i], g.entries[i+1:]...)
	g.mu.Unlock()

	if err := g.persist(ctx); err != nil {
		return err
	}

	g.logger.Info("entry deleted", slog.String("id", id))
	return nil
}

// Get returns one entry by id, or apperror.NotFound.
func (g *Guestbook) Get(id string) (model.Entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i := g.indexOf(id)
	if i < 0 {
		return model.Entry{}, apperror.NotFound("entry", id)
	}
	return g.entries[i], nil
}

// Entries returns a snapshot copy of the collection in storage order.
// The copy means callers (the view builder) can sort and filter freely
// without holding any lock or mutating shared state.
func (g *Guestbook) Entries() []model.Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snapshot := make([]model.Entry, len(g.entries))
	copy(snapshot, g.entries)
	return snapshot
}

// indexOf locates an entry by id. Callers must hold mu.
func (g *Guestbook) indexOf(id string) int {
	for i := range g.entries {
		if g.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the current collection through the backend.
// Callers must hold writeMu (and must NOT hold mu — persist snapshots the
// slice itself, and the backend call can be slow).
func (g *Guestbook) persist(ctx context.Context) error {
	if err := g.backend.Save(ctx, g.Entries()); err != nil {
		g.logger.Error("persisting guestbook entries",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persisting entries: %w", err)
	}
	return nil
}

// isEmptyAfterSanitize reports whether sanitized text carries no content
// beyond masks and whitespace.
func isEmptyAfterSanitize(text string) bool {
	stripped := strings.ReplaceAll(text, sanitize.Mask, "")
	return strings.TrimSpace(stripped) == ""
}

// truncate caps s at max BYTES without splitting a multi-byte rune: the cut
// point backs up to the nearest rune start, so the result is always valid
// UTF-8 (a naive s[:max] can leave a broken rune tail in the stored data).
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
