// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
)

// DefaultName is used when a visitor submits an entry without a name.
const DefaultName = "Anonymous"

// Entry represents a single guestbook post.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. This is called a "struct tag" — metadata attached to fields.
//
// FIELD NOTES:
//   - ID: opaque unique string (xid — sortable, URL-safe, starts with a timestamp).
//     It is the sole lookup key for like/unlike/delete.
//   - Timestamp: creation time in MILLISECONDS since epoch, matching the persisted
//     file format. Immutable after creation; display order sorts on it.
//   - Likes: the only field that mutates after creation. Never negative.
//   - Owner: the anonymous per-browser identifier of the creator. Legacy records
//     may lack it, hence omitempty.
type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Likes     int    `json:"likes"`
	Owner     string `json:"owner,omitempty"`
}

// NewID generates a fresh entry or client identifier.
//
// xid IDs are 20 chars, URL-safe, and begin with a timestamp component followed
// by a machine/process/random suffix — collision probability is negligible but
// not guaranteed zero, which is fine for a guestbook.
func NewID() string {
	return xid.New().String()
}

// DecodeEntries parses a persisted JSON array of guestbook records and
// normalizes each one.
//
// WHY NOT json.Unmarshal INTO []Entry DIRECTLY?
// The guestbook has been through several storage formats, and old files may
// contain records with missing or oddly-typed fields. Decoding into loose
// map[string]any records first lets us repair each one instead of failing the
// whole file:
//   - missing timestamp  → current time at load
//   - missing id         → synthesized (fresh xid)
//   - missing/non-numeric likes → 0 (negative values clamped to 0)
//   - owner              → carried through as-is (may be absent)
//
// Invalid JSON or a non-array returns an error — callers treat that as an
// empty collection and log it.
func DecodeEntries(data []byte) ([]Entry, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding entries: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, normalizeRecord(rec))
	}
	return entries, nil
}

// EncodeEntries serializes the collection as a pretty-printed JSON array.
// The 2-space indentation is cosmetic (humans do read the data file), not
// contractual — DecodeEntries accepts any valid JSON array.
func EncodeEntries(entries []Entry) ([]byte, error) {
	// An empty collection is persisted as "[]", never "null".
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	return data, nil
}

// normalizeRecord repairs one loose record into a well-formed Entry.
//
// TYPE SWITCHES ON any:
// encoding/json decodes JSON numbers into float64 and everything else into
// string/bool/map/slice. A type switch is the idiomatic way to recover the
// concrete type — anything unexpected simply falls through to the default.
func normalizeRecord(rec map[string]any) Entry {
	var e Entry

	if id, ok := rec["id"].(string); ok && id != "" {
		e.ID = id
	} else {
		e.ID = NewID()
	}

	if name, ok := rec["name"].(string); ok && name != "" {
		e.Name = name
	} else {
		e.Name = DefaultName
	}

	if text, ok := rec["text"].(string); ok {
		e.Text = text
	}

	if ts, ok := rec["timestamp"].(float64); ok && ts > 0 {
		e.Timestamp = int64(ts)
	} else {
		e.Timestamp = time.Now().UnixMilli()
	}

	if likes, ok := rec["likes"].(float64); ok && likes > 0 {
		e.Likes = int(likes)
	}

	if owner, ok := rec["owner"].(string); ok {
		e.Owner = owner
	}

	return e
}
