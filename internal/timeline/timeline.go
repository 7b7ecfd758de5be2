package timeline

import (
	"sort"
	"time"

	"github.com/facilitydesk/backend/internal/models"
)

// EntryType distinguishes the merged event kinds.
type EntryType string

const (
	EntryCreation   EntryType = "creation"
	EntryStatus     EntryType = "status"
	EntryAssignment EntryType = "assignment"
)

// DateUnavailable is rendered for events whose timestamp is missing or
// unparsable. The projection degrades per event, never as a whole.
const DateUnavailable = "date unavailable"

// Entry is one event in a request's merged history. Actor and Assignee carry
// denormalized display data so the caller needs no further lookups.
type Entry struct {
	Type      EntryType          `json:"type"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
	Display   string             `json:"display_time"`
	Actor     *models.UserPublic `json:"actor,omitempty"`
	Assignee  *models.UserPublic `json:"assignee,omitempty"`
	Status    string             `json:"status,omitempty"`
	Note      *string            `json:"note,omitempty"`

	// seq is the source row's position in the shared event sequence; it
	// breaks timestamp ties across event types. Creation is seq 0.
	seq int64
}

func displayTime(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return DateUnavailable
	}
	return ts.Format(time.RFC3339)
}

// NewEntry builds an entry, stamping the display string. A nil or zero
// timestamp yields the date-unavailable marker. seq is the source row's
// insertion number.
func NewEntry(t EntryType, ts *time.Time, seq int64) Entry {
	if ts != nil && ts.IsZero() {
		ts = nil
	}
	return Entry{Type: t, Timestamp: ts, Display: displayTime(ts), seq: seq}
}

// Assemble merges event slices into one ascending sequence, ties broken by
// insertion number regardless of which source the entries came from. Events
// without a timestamp sort to the front rather than failing the projection.
func Assemble(groups ...[]Entry) []Entry {
	var merged []Entry
	for _, g := range groups {
		merged = append(merged, g...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].Timestamp, merged[j].Timestamp
		switch {
		case a == nil && b == nil:
			return merged[i].seq < merged[j].seq
		case a == nil:
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return merged[i].seq < merged[j].seq
	})
	return merged
}
