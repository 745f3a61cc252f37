package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can upload posts, report images, and (for
// admins) work the review queue.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email    string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;default:'user'" json:"role"`

	// Moderation state, managed by the admin user endpoints.
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	SuspendReason  string     `gorm:"size:500" json:"suspend_reason,omitempty"`
	BannedAt       *time.Time `json:"banned_at,omitempty"`
	BanReason      string     `gorm:"size:500" json:"ban_reason,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Banned() bool {
	return u.BannedAt != nil
}

func (u *User) Suspended() bool {
	return u.SuspendedUntil != nil && time.Now().Before(*u.SuspendedUntil)
}

func (u *User) Active() bool {
	return !u.Banned() && !u.Suspended()
}
