package models

import (
	"time"

	"github.com/google/uuid"
)

// Building is tenant-scoped reference data with an ordered room list.
type Building struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Rooms          []string  `json:"rooms"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasRoom reports whether the room identifier exists in the building.
func (b *Building) HasRoom(room string) bool {
	for _, r := range b.Rooms {
		if r == room {
			return true
		}
	}
	return false
}

// Facility is tenant-scoped reference data with a list of reservable items.
type Facility struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Items          []string  `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
