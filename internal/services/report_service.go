package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// imageURLTTL bounds how long a presigned image link handed to a
// reviewer or post viewer stays valid.
const imageURLTTL = 15 * time.Minute

var (
	ErrAlreadyReported = errors.New("image already reported by this user")
	ErrImageNotFound   = errors.New("image not found")
	ErrReportNotFound  = errors.New("report not found")
)

// ValidationError carries field-level detail back to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ModerationEnqueuer dispatches a fire-and-forget moderation task for an
// attachment. The report intake path never waits on classification.
type ModerationEnqueuer interface {
	EnqueueModeration(ctx context.Context, attachmentID uuid.UUID) error
}

type ReportService struct {
	db    *gorm.DB
	queue ModerationEnqueuer
	blobs storage.ObjectStore
}

func NewReportService(db *gorm.DB, queue ModerationEnqueuer, blobs storage.ObjectStore) *ReportService {
	return &ReportService{db: db, queue: queue, blobs: blobs}
}

// CreateReport files a user report against an image. The first report
// ever filed for an attachment triggers the moderation pipeline; later
// reports do not, so the classifier runs at most once per image under
// non-racing conditions. Two near-simultaneous first reports can both
// observe count == 1 and enqueue twice; the pipeline's idempotent
// system-report creation bounds that to a duplicate classifier call.
func (s *ReportService) CreateReport(ctx context.Context, reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.ImageReport, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "reason is required"}
	}
	if req.AttachmentID == uuid.Nil {
		return nil, &ValidationError{Field: "attachment_id", Message: "attachment_id is required"}
	}

	var attachment models.ImageAttachment
	if err := s.db.WithContext(ctx).First(&attachment, "id = ?", req.AttachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to load attachment: %w", err)
	}

	var existing models.ImageReport
	err := s.db.WithContext(ctx).
		Where("attachment_id = ? AND reporter_id = ?", attachment.ID, reporterID).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyReported
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing report: %w", err)
	}

	report := models.ImageReport{
		ID:           uuid.New(),
		AttachmentID: attachment.ID,
		ReporterID:   &reporterID,
		Reason:       req.Reason,
		Status:       models.ReportPending,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		// The unique index backstops concurrent submissions: whichever
		// insert loses observes the conflict here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReported
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ImageReport{}).
		Where("attachment_id = ?", attachment.ID).
		Count(&count).Error; err != nil {
		slog.Error("failed to count reports for moderation trigger", "attachment_id", attachment.ID, "error", err)
		return &report, nil
	}

	if count == 1 {
		if err := s.queue.EnqueueModeration(ctx, attachment.ID); err != nil {
			// Moderation is best-effort; a queue outage must not fail
			// the report submission.
			slog.Error("failed to enqueue moderation task", "attachment_id", attachment.ID, "error", err)
		}
	}

	return &report, nil
}

func (s *ReportService) ListReports(status string, limit, offset int) ([]models.ImageReport, int64, error) {
	var reports []models.ImageReport
	var total int64

	query := s.db.Model(&models.ImageReport{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// GetReport loads one report plus every report filed against the same
// attachment, for the admin detail view, along with a short-lived
// download link so the reviewer can see the image being judged. A
// presign failure degrades to an empty URL rather than failing the view.
func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.ImageReport, []models.ImageReport, string, error) {
	var report models.ImageReport
	if err := s.db.WithContext(ctx).Preload("Attachment").First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrReportNotFound
		}
		return nil, nil, "", err
	}

	var siblings []models.ImageReport
	if err := s.db.WithContext(ctx).
		Where("attachment_id = ?", report.AttachmentID).
		Order("created_at DESC").
		Find(&siblings).Error; err != nil {
		return nil, nil, "", err
	}

	imageURL, err := s.blobs.PresignDownload(ctx, report.Attachment.StorageKey, imageURLTTL)
	if err != nil {
		slog.Error("failed to presign report image", "report_id", report.ID, "error", err)
		imageURL = ""
	}
	return &report, siblings, imageURL, nil
}

func (s *ReportService) Stats() (dto.ReportStats, error) {
	var stats dto.ReportStats
	counts := []struct {
		status string
		dst    *int64
	}{
		{models.ReportPending, &stats.Pending},
		{models.ReportReviewed, &stats.Reviewed},
		{models.ReportConfirmed, &stats.Confirmed},
		{models.ReportDismissed, &stats.Dismissed},
	}
	if err := s.db.Model(&models.ImageReport{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	for _, c := range counts {
		if err := s.db.Model(&models.ImageReport{}).Where("status = ?", c.status).Count(c.dst).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Confirm marks the report as confirmed inappropriate. There is no
// guard on the current status: an already-decided report can be
// re-reviewed, last writer wins.
func (s *ReportService) Confirm(reportID, reviewerID uuid.UUID) (*models.ImageReport, error) {
	return s.review(reportID, reviewerID, models.ReportConfirmed)
}

// Dismiss marks the report as having no issues.
func (s *ReportService) Dismiss(reportID, reviewerID uuid.UUID) (*models.ImageReport, error) {
	return s.review(reportID, reviewerID, models.ReportDismissed)
}

func (s *ReportService) review(reportID, reviewerID uuid.UUID, status string) (*models.ImageReport, error) {
	var report models.ImageReport
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&report).Updates(map[string]interface{}{
		"status":      status,
		"reviewer_id": reviewerID,
		"reviewed_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	report.Status = status
	report.ReviewerID = &reviewerID
	report.ReviewedAt = &now
	return &report, nil
}
