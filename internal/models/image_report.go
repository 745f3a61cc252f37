package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report statuses.
const (
	ReportPending   = "pending"   // not reviewed yet
	ReportReviewed  = "reviewed"  // reviewed, no action needed
	ReportConfirmed = "confirmed" // confirmed inappropriate
	ReportDismissed = "dismissed" // no issues found
)

// ReportReasonCategories are the report categories offered to users.
// Free-text reasons are also accepted.
var ReportReasonCategories = []string{"r18", "r18g", "copyright", "spam", "harassment", "other"}

// ImageReport is a single assertion that an image violates policy.
// ReporterID is nil for reports created by the moderation pipeline
// (system reports); those are born confirmed.
//
// Uniqueness is enforced in the database, not just in application code:
// the composite index covers human reporters, and because SQL treats
// NULLs as pairwise distinct, a separate partial index guarantees at
// most one system report per attachment.
type ImageReport struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AttachmentID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_reports_attachment_reporter;uniqueIndex:idx_reports_system,where:reporter_id IS NULL" json:"attachment_id"`
	ReporterID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reports_attachment_reporter" json:"reporter_id,omitempty"`
	Reason       string     `gorm:"type:text;not null" json:"reason"`
	Status       string     `gorm:"not null;default:'pending';size:20;index" json:"status"`

	ReviewerID *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	AIFlagged    bool           `gorm:"default:false;index" json:"ai_flagged"`
	AIConfidence float64        `json:"ai_confidence"`
	AICategories datatypes.JSON `gorm:"type:jsonb" json:"ai_categories,omitempty"`
	AIDetectedAt *time.Time     `gorm:"column:ai_detected_at" json:"ai_detected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachment ImageAttachment `gorm:"foreignKey:AttachmentID" json:"-"`
	Reporter   *User           `gorm:"foreignKey:ReporterID" json:"-"`
	Reviewer   *User           `gorm:"foreignKey:ReviewerID" json:"-"`
}

// SystemReport reports whether this report was created by the
// moderation pipeline rather than a human reporter.
func (r *ImageReport) SystemReport() bool {
	return r.ReporterID == nil
}
