package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents a retail location managed by an admin and staffed by attendants
type Shop struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Slug         string      `json:"slug" db:"slug"`
	Location     string      `json:"location" db:"location"`
	AdminID      uuid.UUID   `json:"adminId" db:"admin_id"`
	AttendantIDs []uuid.UUID `json:"attendantIds" db:"attendant_ids"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}
