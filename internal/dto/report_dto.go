package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	Reason       string    `json:"reason"`
}

type ReportStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Reviewed  int64 `json:"reviewed"`
	Confirmed int64 `json:"confirmed"`
	Dismissed int64 `json:"dismissed"`
}

type FrozenPostStats struct {
	Total     int64 `json:"total"`
	Temporary int64 `json:"temporary"`
	Permanent int64 `json:"permanent"`
}

type FreezeRequest struct {
	Reason string `json:"reason"`
}

type SuspendUserRequest struct {
	Reason       string `json:"reason"`
	DurationDays int    `json:"duration_days"`
}

type BanUserRequest struct {
	Reason string `json:"reason"`
}

type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Banned    int64 `json:"banned"`
	Admin     int64 `json:"admin"`
}
