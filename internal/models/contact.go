package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is an inbound contact-form capture. It has no relationship
// to the request lifecycle.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
