package models

import (
	"time"

	"github.com/google/uuid"
)

// Freeze types applied to a post.
const (
	FreezeTemporary = "temporary"
	FreezePermanent = "permanent"
)

// Post is the content record an image attachment hangs off. A frozen
// post stays in the database but is hidden from everyone except its
// owner and admins. Freeze state is only written through the
// services.Freezer capability or the admin frozen-post endpoints.
type Post struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title   string    `gorm:"size:255" json:"title"`
	Caption string    `gorm:"size:2000" json:"caption"`

	FrozenAt     *time.Time `gorm:"index" json:"frozen_at,omitempty"`
	FrozenType   string     `gorm:"size:20" json:"frozen_type,omitempty"`
	FreezeReason string     `gorm:"type:text" json:"freeze_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Post) Frozen() bool {
	return p.FrozenAt != nil
}

func (p *Post) TemporarilyFrozen() bool {
	return p.Frozen() && p.FrozenType == FreezeTemporary
}

func (p *Post) PermanentlyFrozen() bool {
	return p.Frozen() && p.FrozenType == FreezePermanent
}
