// Package repository defines the persistence capability the guestbook needs.
//
// The whole collection is loaded and saved as one unit — the guestbook is
// small enough that "the array is the record" keeps every backend trivial.
// Implementations: a flat JSON file (repository/file), an S3-compatible
// object store holding the array under one fixed key (repository/s3kv), and
// a decorator that tries the remote backend and falls back to the file on
// any failure (repository/fallback).
package repository

import (
	"context"

	"github.com/sakif/guestbook/internal/model"
)

// Backend loads and saves the full entry collection.
//
// Load returns an empty slice (not an error) for "nothing persisted yet";
// errors are reserved for genuine I/O or decode failures the caller may want
// to recover from. Save overwrites whatever was persisted before.
type Backend interface {
	Load(ctx context.Context) ([]model.Entry, error)
	Save(ctx context.Context, entries []model.Entry) error
}
