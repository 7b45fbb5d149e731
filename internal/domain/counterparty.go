package domain

import (
	"time"

	"github.com/google/uuid"
)

// Counterparty is the external party texting the business. For the staffing
// use case this is a physician being offered shifts.
type Counterparty struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"` // phone number or channel handle
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
