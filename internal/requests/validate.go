package requests

import (
	"time"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// ItemsPayload mirrors the request_items detail row for facilities requests.
type ItemsPayload struct {
	Chairs          bool    `json:"chairs"`
	ChairsQty       *int    `json:"chairs_qty"`
	ChairsLocation  *string `json:"chairs_location"`
	Podium          bool    `json:"podium"`
	PodiumLocation  *string `json:"podium_location"`
	AVEquipment     bool    `json:"av_equipment"`
	AVDetails       *string `json:"av_details"`
	Tables          bool    `json:"tables"`
	TablesQty       *int    `json:"tables_qty"`
	TablesLocation  *string `json:"tables_location"`
	Lighting        bool    `json:"lighting"`
	LightingDetails *string `json:"lighting_details"`
	Food            bool    `json:"food"`
	FoodDetails     *string `json:"food_details"`
	Cleanup         bool    `json:"cleanup"`
	OtherNeeds      *string `json:"other_needs"`
}

// CreatePayload is the JSON part of a multipart request-creation call.
// Building-type requests use Building/RoomNumber/Description; facilities-type
// requests use Facility and Items.
type CreatePayload struct {
	Event     string  `json:"event"`
	EventDate string  `json:"event_date"` // YYYY-MM-DD
	Priority  string  `json:"priority"`
	SetupTime *string `json:"setup_time"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`

	Building    string `json:"building"`
	RoomNumber  string `json:"room_number"`
	Description string `json:"description"`

	Facility string       `json:"facility"`
	Items    ItemsPayload `json:"items"`
}

// Validate checks the payload for the given request type, collecting every
// failing field rather than stopping at the first. Directory references are
// checked separately against the tenant's buildings/facilities.
func (p *CreatePayload) Validate(requestType models.RequestType) (*apperr.ValidationError, time.Time, models.Priority) {
	verr := &apperr.ValidationError{}

	if p.Event == "" {
		verr.Add("event", "required")
	}
	var eventDate time.Time
	if p.EventDate == "" {
		verr.Add("event_date", "required")
	} else {
		var err error
		eventDate, err = time.Parse("2006-01-02", p.EventDate)
		if err != nil {
			verr.Add("event_date", "must be YYYY-MM-DD")
		}
	}

	priority := models.PriorityMedium
	if p.Priority != "" {
		priority = models.Priority(p.Priority)
		if !priority.Valid() {
			verr.Add("priority", "must be one of low, medium, high, urgent")
		}
	}

	switch requestType {
	case models.RequestTypeBuilding:
		if p.Building == "" {
			verr.Add("building", "required")
		}
		if p.RoomNumber == "" {
			verr.Add("room_number", "required")
		}
		if p.Description == "" {
			verr.Add("description", "required")
		}
	case models.RequestTypeFacilities:
		if p.Facility == "" {
			verr.Add("facility", "required")
		}
		if p.Items.Chairs && (p.Items.ChairsQty == nil || *p.Items.ChairsQty <= 0) {
			verr.Add("items.chairs_qty", "required when chairs are requested")
		}
		if p.Items.Tables && (p.Items.TablesQty == nil || *p.Items.TablesQty <= 0) {
			verr.Add("items.tables_qty", "required when tables are requested")
		}
	default:
		verr.Add("request_type", "must be building or facilities")
	}

	return verr, eventDate, priority
}
