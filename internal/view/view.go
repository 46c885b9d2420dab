// Package view derives the display-ready projection of the entry collection.
//
// The service owns the data; this package owns how it LOOKS on the listing:
// newest-first ordering, search and "mine only" filtering, the relative-age
// label, and the per-entry delete permission flag. Everything here is a pure
// function over a snapshot — nothing in this package mutates the store, and
// nothing in the store depends on this package.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sakif/guestbook/internal/model"
)

// Entry is one row of the rendered listing: the stored entry plus the
// derived display annotations.
type Entry struct {
	model.Entry
	Age       string `json:"age"`
	CanDelete bool   `json:"canDelete"`
}

// Options control which entries survive the projection and how they are
// annotated for the requesting client.
type Options struct {
	Query       string    // case-insensitive substring match on name or text
	MineOnly    bool      // keep only the requester's own entries
	RequesterID string    // the client id the projection is built for
	Now         time.Time // reference time for the relative-age labels
}

// Build produces the filtered, sorted, annotated projection.
//
// ORDER OF OPERATIONS:
// sort first (descending by timestamp, stable so storage order breaks ties),
// then filter, then annotate. The input slice is already a snapshot copy
// (service.Entries), so sorting in place here touches nobody else's data.
func Build(entries []model.Entry, opts Options) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})

	query := strings.ToLower(strings.TrimSpace(opts.Query))

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if query != "" && !matches(e, query) {
			continue
		}
		if opts.MineOnly && e.Owner != opts.RequesterID {
			continue
		}
		result = append(result, Entry{
			Entry:     e,
			Age:       RelativeAge(opts.Now, e.Timestamp),
			CanDelete: e.Owner != "" && e.Owner == opts.RequesterID,
		})
	}
	return result
}

func matches(e model.Entry, query string) bool {
	return strings.Contains(strings.ToLower(e.Name), query) ||
		strings.Contains(strings.ToLower(e.Text), query)
}

// Age unit thresholds. Months are approximated as 30 days and years as 12
// such months — close enough for "how old is this post" labels.
const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	month  = 30 * day
	year   = 12 * month
)

// RelativeAge renders the elapsed time since tsMillis as the largest whole
// unit: "42s ago", "3m ago", "7h ago", "12d ago", "4mo ago", "2y ago".
// Elapsed time below one second (including clock skew into the future)
// renders as "0s ago".
func RelativeAge(now time.Time, tsMillis int64) string {
	secs := now.UnixMilli()/1000 - tsMillis/1000
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < minute:
		return fmt.Sprintf("%ds ago", secs)
	case secs < hour:
		return fmt.Sprintf("%dm ago", secs/minute)
	case secs < day:
		return fmt.Sprintf("%dh ago", secs/hour)
	case secs < month:
		return fmt.Sprintf("%dd ago", secs/day)
	case secs < year:
		return fmt.Sprintf("%dmo ago", secs/month)
	default:
		return fmt.Sprintf("%dy ago", secs/year)
	}
}
