package directory

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// User is a row in the user directory. The realtime core only ever
// sees opaque user IDs; name, email and role live here and are
// cross-referenced by the reporting endpoints.
type User struct {
	gorm.Model
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `json:"-"` // hashed by the auth service, never returned
	Role         string     `gorm:"not null;default:User" json:"role"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
}

/** -------------------- DTOs -------------------- */
// OnlineUserResponse is a directory row joined with live presence.
type OnlineUserResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}
