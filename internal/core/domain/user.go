package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents the state of an API user account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// User is an API-layer account allowed to drive the gateway.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActive returns true if the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
