package models

import (
	"time"

	"github.com/google/uuid"
)

// ImageAttachment links a post to the image object stored in S3/R2.
// Reports reference the attachment, not the post, so a post that is
// re-uploaded gets a fresh moderation history.
type ImageAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID      uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	StorageKey  string    `gorm:"not null;size:512;uniqueIndex" json:"-"`
	ContentType string    `gorm:"not null;size:100" json:"content_type"`
	Filename    string    `gorm:"size:255" json:"filename"`
	ByteSize    int64     `json:"byte_size"`
	CreatedAt   time.Time `json:"created_at"`

	Post Post `gorm:"foreignKey:PostID" json:"-"`
}
