package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &ts
}

func TestAssembleOrdersCreationStatusAndAssignment(t *testing.T) {
	creation := NewEntry(EntryCreation, at(t, "2026-03-01T09:00:00Z"), 0)

	s1 := NewEntry(EntryStatus, at(t, "2026-03-01T10:00:00Z"), 1)
	s1.Status = "approved"
	s2 := NewEntry(EntryStatus, at(t, "2026-03-02T08:30:00Z"), 3)
	s2.Status = "in-progress"

	a1 := NewEntry(EntryAssignment, at(t, "2026-03-01T12:00:00Z"), 2)

	got := Assemble([]Entry{creation}, []Entry{s1, s2}, []Entry{a1})
	require.Len(t, got, 4)
	assert.Equal(t, EntryCreation, got[0].Type)
	assert.Equal(t, "approved", got[1].Status)
	assert.Equal(t, EntryAssignment, got[2].Type)
	assert.Equal(t, "in-progress", got[3].Status)
}

func TestAssembleBreaksTiesByInsertionNumber(t *testing.T) {
	ts := "2026-03-01T10:00:00Z"
	s1 := NewEntry(EntryStatus, at(t, ts), 1)
	s1.Status = "approved"
	s2 := NewEntry(EntryStatus, at(t, ts), 2)
	s2.Status = "in-progress"

	got := Assemble(nil, []Entry{s1, s2})
	require.Len(t, got, 2)
	assert.Equal(t, "approved", got[0].Status)
	assert.Equal(t, "in-progress", got[1].Status)
}

func TestAssembleBreaksCrossTypeTiesByInsertionNumber(t *testing.T) {
	ts := "2026-03-01T10:00:00Z"
	// The assignment was inserted before the status update but its group
	// comes later in the call; insertion number must win.
	a := NewEntry(EntryAssignment, at(t, ts), 4)
	s := NewEntry(EntryStatus, at(t, ts), 5)
	s.Status = "in-progress"

	got := Assemble([]Entry{s}, []Entry{a})
	require.Len(t, got, 2)
	assert.Equal(t, EntryAssignment, got[0].Type)
	assert.Equal(t, EntryStatus, got[1].Type)
}

func TestAssembleMissingDateGetsMarkerNotFailure(t *testing.T) {
	creation := NewEntry(EntryCreation, at(t, "2026-03-01T09:00:00Z"), 0)
	broken := NewEntry(EntryStatus, nil, 1)
	broken.Status = "approved"

	got := Assemble([]Entry{creation}, []Entry{broken})
	require.Len(t, got, 2)

	assert.Equal(t, DateUnavailable, got[0].Display)
	assert.Nil(t, got[0].Timestamp)
	assert.Equal(t, "approved", got[0].Status)
	assert.NotEqual(t, DateUnavailable, got[1].Display)
}

func TestNewEntryZeroTimeTreatedAsUnavailable(t *testing.T) {
	var zero time.Time
	e := NewEntry(EntryStatus, &zero, 1)
	assert.Nil(t, e.Timestamp)
	assert.Equal(t, DateUnavailable, e.Display)
}

func TestDisplayUsesRFC3339(t *testing.T) {
	e := NewEntry(EntryCreation, at(t, "2026-03-01T09:00:00Z"), 0)
	assert.Equal(t, "2026-03-01T09:00:00Z", e.Display)
}
