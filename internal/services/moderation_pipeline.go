package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/vision"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModerationPipeline runs the asynchronous moderation task for one
// attachment: fetch the image bytes, classify them, file a system
// report for flagged content, and optionally freeze the post.
//
// Moderation is supplementary. Every failure inside Moderate is logged
// and swallowed; the task never propagates an error and is never
// retried. A failed run leaves the image under its standing human
// reports only.
type ModerationPipeline struct {
	db         *gorm.DB
	classifier vision.Classifier
	blobs      storage.ObjectStore
	freezer    Freezer
	autoFreeze bool
}

func NewModerationPipeline(db *gorm.DB, classifier vision.Classifier, blobs storage.ObjectStore, freezer Freezer, cfg *config.Config) *ModerationPipeline {
	return &ModerationPipeline{
		db:         db,
		classifier: classifier,
		blobs:      blobs,
		freezer:    freezer,
		autoFreeze: cfg.AutoFreezeOnFlag,
	}
}

// Moderate is the task body consumed from the queue.
func (p *ModerationPipeline) Moderate(ctx context.Context, attachmentID uuid.UUID) {
	var attachment models.ImageAttachment
	err := p.db.WithContext(ctx).First(&attachment, "id = ?", attachmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Info("attachment gone, skipping moderation", "attachment_id", attachmentID)
		} else {
			slog.Error("failed to load attachment for moderation", "attachment_id", attachmentID, "error", err)
		}
		return
	}

	image, err := p.blobs.Download(ctx, attachment.StorageKey)
	if err != nil {
		slog.Error("failed to download image for moderation", "attachment_id", attachmentID, "error", err)
		return
	}

	verdict := p.classifier.Moderate(ctx, image, attachment.ContentType)
	if !verdict.Flagged {
		slog.Info("image moderation completed", "attachment_id", attachmentID, "flagged", false)
		return
	}

	if err := p.createSystemReport(ctx, &attachment, verdict); err != nil {
		slog.Error("failed to create system report", "attachment_id", attachmentID, "error", err)
		return
	}

	if p.autoFreeze {
		p.freezePost(ctx, &attachment, verdict)
	}

	slog.Info("image moderation completed", "attachment_id", attachmentID, "flagged", true, "confidence", verdict.Confidence)
}

// createSystemReport files the pipeline's own confirmed report, at most
// once per attachment. An existing system report is never overwritten.
func (p *ModerationPipeline) createSystemReport(ctx context.Context, attachment *models.ImageAttachment, verdict vision.Verdict) error {
	var existing models.ImageReport
	err := p.db.WithContext(ctx).
		Where("attachment_id = ? AND reporter_id IS NULL", attachment.ID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing system report: %w", err)
	}

	now := time.Now()
	categories, err := json.Marshal(verdict.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode verdict categories: %w", err)
	}

	report := models.ImageReport{
		ID:           uuid.New(),
		AttachmentID: attachment.ID,
		ReporterID:   nil,
		Reason:       buildVerdictReason(verdict),
		Status:       models.ReportConfirmed,
		ReviewedAt:   &now,
		AIFlagged:    verdict.Flagged,
		AIConfidence: verdict.Confidence,
		AICategories: datatypes.JSON(categories),
		AIDetectedAt: &now,
	}
	if err := p.db.WithContext(ctx).Create(&report).Error; err != nil {
		// A concurrent moderation task for the same image won the
		// partial-index race; nothing left to do.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to create system report: %w", err)
	}
	return nil
}

// freezePost temporarily freezes the post behind a flagged attachment.
// Skipped when the record is gone, does not expose the capability, or is
// already frozen. A freeze failure is logged and does not undo the
// system report.
func (p *ModerationPipeline) freezePost(ctx context.Context, attachment *models.ImageAttachment, verdict vision.Verdict) {
	var post models.Post
	if err := p.db.WithContext(ctx).First(&post, "id = ?", attachment.PostID).Error; err != nil {
		slog.Error("failed to load post for freeze", "post_id", attachment.PostID, "error", err)
		return
	}

	if !p.freezer.SupportsFreeze(&post) {
		return
	}
	if p.freezer.IsFrozen(&post) {
		return
	}

	reason := "AI auto-moderation: post has been temporarily frozen due to inappropriate content detection.\n" + buildVerdictReason(verdict)
	if err := p.freezer.Freeze(ctx, &post, models.FreezeTemporary, reason); err != nil {
		slog.Error("failed to freeze post", "post_id", post.ID, "error", err)
		return
	}
	slog.Info("post temporarily frozen by moderation", "post_id", post.ID)
}

// buildVerdictReason renders the human-readable reason string stored on
// system reports and freeze records. Flagged categories are sorted by
// name so the output is deterministic.
func buildVerdictReason(verdict vision.Verdict) string {
	lines := []string{"Auto-detected: Inappropriate content detected"}

	var flagged []string
	for category, hit := range verdict.Categories {
		if hit {
			flagged = append(flagged, category)
		}
	}
	if len(flagged) > 0 {
		sort.Strings(flagged)
		lines = append(lines, "Detected categories:")
		for _, category := range flagged {
			lines = append(lines, "  - "+category)
		}
	}

	lines = append(lines, fmt.Sprintf("Confidence: %.1f%%", verdict.Confidence*100))
	return strings.Join(lines, "\n")
}
