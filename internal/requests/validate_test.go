package requests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

func fieldNames(verr *apperr.ValidationError) []string {
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateBuildingRequestOK(t *testing.T) {
	p := CreatePayload{
		Event:       "Leaking ceiling",
		EventDate:   "2026-04-10",
		Building:    "Gym",
		RoomNumber:  "2",
		Description: "Water stain spreading across tiles",
	}
	verr, eventDate, priority := p.Validate(models.RequestTypeBuilding)
	assert.False(t, verr.HasErrors())
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), eventDate)
	assert.Equal(t, models.PriorityMedium, priority)
}

func TestValidateCollectsEveryFailingField(t *testing.T) {
	p := CreatePayload{Priority: "asap"}
	verr, _, _ := p.Validate(models.RequestTypeBuilding)
	require.True(t, verr.HasErrors())

	names := fieldNames(verr)
	assert.Contains(t, names, "event")
	assert.Contains(t, names, "event_date")
	assert.Contains(t, names, "priority")
	assert.Contains(t, names, "building")
	assert.Contains(t, names, "room_number")
	assert.Contains(t, names, "description")
}

func TestValidateBadDateFormat(t *testing.T) {
	p := CreatePayload{
		Event:       "Broken window",
		EventDate:   "10/04/2026",
		Building:    "Gym",
		RoomNumber:  "1",
		Description: "Cracked pane",
	}
	verr, _, _ := p.Validate(models.RequestTypeBuilding)
	require.True(t, verr.HasErrors())
	assert.Equal(t, []string{"event_date"}, fieldNames(verr))
}

func TestValidateFacilitiesQuantitiesRequiredWhenRequested(t *testing.T) {
	qty := 0
	p := CreatePayload{
		Event:     "Spring banquet",
		EventDate: "2026-05-01",
		Facility:  "Main Hall",
		Items: ItemsPayload{
			Chairs:    true,
			ChairsQty: &qty,
			Tables:    true,
		},
	}
	verr, _, _ := p.Validate(models.RequestTypeFacilities)
	require.True(t, verr.HasErrors())

	names := fieldNames(verr)
	assert.Contains(t, names, "items.chairs_qty")
	assert.Contains(t, names, "items.tables_qty")
	assert.NotContains(t, names, "facility")
}

func TestValidateFacilitiesQuantitiesNotRequiredWhenUnchecked(t *testing.T) {
	p := CreatePayload{
		Event:     "Board meeting",
		EventDate: "2026-05-02",
		Facility:  "Conference Room",
		Items:     ItemsPayload{Podium: true},
	}
	verr, _, _ := p.Validate(models.RequestTypeFacilities)
	assert.False(t, verr.HasErrors())
}

func TestValidateExplicitPriorityKept(t *testing.T) {
	p := CreatePayload{
		Event:       "Gas smell",
		EventDate:   "2026-04-11",
		Priority:    "urgent",
		Building:    "Science Wing",
		RoomNumber:  "101",
		Description: "Smell near the lab benches",
	}
	verr, _, priority := p.Validate(models.RequestTypeBuilding)
	assert.False(t, verr.HasErrors())
	assert.Equal(t, models.PriorityUrgent, priority)
}
