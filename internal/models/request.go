package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestType determines which detail row accompanies a request.
type RequestType string

const (
	RequestTypeFacilities RequestType = "facilities"
	RequestTypeBuilding   RequestType = "building"
)

// Priority of a request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Request is the aggregate root of the maintenance domain. Status is a
// denormalized projection of the latest status_updates row, updated only in
// the same transaction as the append.
type Request struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	RequestType    RequestType `json:"request_type"`
	Facility       string      `json:"facility,omitempty"`
	Event          string      `json:"event"`
	EventDate      time.Time   `json:"event_date"`
	SetupTime      *string     `json:"setup_time,omitempty"`
	StartTime      *string     `json:"start_time,omitempty"`
	EndTime        *string     `json:"end_time,omitempty"`
	RequestorID    uuid.UUID   `json:"requestor_id"`
	Status         string      `json:"status"`
	Priority       Priority    `json:"priority"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// RequestItems is the 1:1 detail row for a facilities-type request.
type RequestItems struct {
	ID              uuid.UUID `json:"id"`
	RequestID       uuid.UUID `json:"request_id"`
	Chairs          bool      `json:"chairs"`
	ChairsQty       *int      `json:"chairs_qty,omitempty"`
	ChairsLocation  *string   `json:"chairs_location,omitempty"`
	Podium          bool      `json:"podium"`
	PodiumLocation  *string   `json:"podium_location,omitempty"`
	AVEquipment     bool      `json:"av_equipment"`
	AVDetails       *string   `json:"av_details,omitempty"`
	Tables          bool      `json:"tables"`
	TablesQty       *int      `json:"tables_qty,omitempty"`
	TablesLocation  *string   `json:"tables_location,omitempty"`
	Lighting        bool      `json:"lighting"`
	LightingDetails *string   `json:"lighting_details,omitempty"`
	Food            bool      `json:"food"`
	FoodDetails     *string   `json:"food_details,omitempty"`
	Cleanup         bool      `json:"cleanup"`
	OtherNeeds      *string   `json:"other_needs,omitempty"`
}

// BuildingRequest is the 1:1 detail row for a building-type request.
// All three fields are required.
type BuildingRequest struct {
	ID          uuid.UUID `json:"id"`
	RequestID   uuid.UUID `json:"request_id"`
	Building    string    `json:"building"`
	RoomNumber  string    `json:"room_number"`
	Description string    `json:"description"`
}

// Assignment links a request to the user working it. Rows are append-only;
// the current assignee is the assignee of the most recent row.
type Assignment struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	AssigneeID uuid.UUID `json:"assignee_id"`
	AssignerID uuid.UUID `json:"assigner_id"`
	Notes      *string   `json:"notes,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// StatusUpdate is one row of the append-only status transition log.
type StatusUpdate struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
	ActorID   uuid.UUID `json:"actor_id"`
	Note      *string   `json:"note,omitempty"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one append-only entry of a request's conversation thread.
type Message struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// PhotoState tracks the two-phase commit of a photo binary.
type PhotoState string

const (
	PhotoStatePending   PhotoState = "pending"
	PhotoStateConfirmed PhotoState = "confirmed"
)

// RequestPhoto is the metadata index entry for an uploaded photo. The binary
// lives in object storage; losing it must not corrupt this index.
type RequestPhoto struct {
	ID          uuid.UUID  `json:"id"`
	RequestID   uuid.UUID  `json:"request_id"`
	Filename    string     `json:"filename"`
	ObjectKey   string     `json:"object_key"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Caption     *string    `json:"caption,omitempty"`
	UploadedBy  uuid.UUID  `json:"uploaded_by"`
	State       PhotoState `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
}
