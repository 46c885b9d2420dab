// Package fallback decorates the remote backend with automatic recovery.
//
// FALLBACK PHILOSOPHY:
// The guestbook would rather lose the remote copy of the data than show a
// visitor an error page. Every call goes to the primary (remote) backend
// first, under a bounded timeout; ANY failure — network, auth, decode, or
// the timeout itself — is logged and the same call is retried against the
// file backend. Callers see a remote error only if the file backend fails
// too, and the file backend's own recovery policy makes that rare.
//
// This is the decorator pattern: Backend wrapping Backend, invisible to the
// service layer, which just sees a repository.Backend that hardly ever fails.
package fallback

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/guestbook/internal/model"
	"github.com/sakif/guestbook/internal/repository"
)

var _ repository.Backend = (*Backend)(nil)

// DefaultTimeout bounds each remote call. A hung remote store must not hang
// the request — after this long we behave exactly as if the call had failed.
const DefaultTimeout = 5 * time.Second

// Backend tries primary first and falls back to secondary on any error.
type Backend struct {
	primary   repository.Backend
	secondary repository.Backend
	timeout   time.Duration
	logger    *slog.Logger
}

// New wraps primary with fallback to secondary. A non-positive timeout
// selects DefaultTimeout.
func New(primary, secondary repository.Backend, timeout time.Duration, logger *slog.Logger) *Backend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		logger:    logger,
	}
}

// Load reads from the primary backend, falling back to the secondary.
func (b *Backend) Load(ctx context.Context) ([]model.Entry, error) {
	tctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	entries, err := b.primary.Load(tctx)
	if err == nil {
		return entries, nil
	}

	b.logger.Warn("remote load failed, falling back to file backend",
		slog.String("error", err.Error()),
	)
	return b.secondary.Load(ctx)
}

// Save writes to the primary backend, falling back to the secondary.
//
// Note the asymmetry this creates on purpose: after a fallback Save the file
// holds newer data than the remote store. The original guestbook accepted
// that — last writer wins whenever the remote store comes back.
func (b *Backend) Save(ctx context.Context, entries []model.Entry) error {
	tctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.primary.Save(tctx, entries); err != nil {
		b.logger.Warn("remote save failed, falling back to file backend",
			slog.String("error", err.Error()),
		)
		return b.secondary.Save(ctx, entries)
	}
	return nil
}
