package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin     = "ADMIN"
	RoleAttendant = "ATTENDANT"
)

// User represents a staff account (shop admin or attendant)
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Phone        string     `json:"phone" db:"phone"`
	Dob          *time.Time `json:"dob" db:"dob"`
	Gender       string     `json:"gender" db:"gender"`
	Image        string     `json:"image" db:"image"`
	Role         string     `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// RefreshToken represents a persisted refresh token issued at login
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
