package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"gorm.io/gorm"
)

// Freezer is the narrow capability the moderation pipeline needs from
// whatever owns the content records. The pipeline never touches freeze
// columns directly; it checks for the capability, re-checks frozen state,
// and calls Freeze, treating any error as non-fatal.
type Freezer interface {
	SupportsFreeze(post *models.Post) bool
	IsFrozen(post *models.Post) bool
	Freeze(ctx context.Context, post *models.Post, freezeType, reason string) error
}

// PostFreezer is the host implementation backed by the posts table.
type PostFreezer struct {
	db *gorm.DB
}

func NewPostFreezer(db *gorm.DB) *PostFreezer {
	return &PostFreezer{db: db}
}

func (f *PostFreezer) SupportsFreeze(post *models.Post) bool {
	return post != nil
}

func (f *PostFreezer) IsFrozen(post *models.Post) bool {
	return post != nil && post.Frozen()
}

func (f *PostFreezer) Freeze(ctx context.Context, post *models.Post, freezeType, reason string) error {
	now := time.Now()
	err := f.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"frozen_at":     now,
		"frozen_type":   freezeType,
		"freeze_reason": reason,
	}).Error
	if err != nil {
		return err
	}
	post.FrozenAt = &now
	post.FrozenType = freezeType
	post.FreezeReason = reason
	return nil
}

// Unfreeze clears freeze state; used by the admin frozen-posts panel.
func (f *PostFreezer) Unfreeze(ctx context.Context, post *models.Post) error {
	err := f.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"frozen_at":     nil,
		"frozen_type":   "",
		"freeze_reason": "",
	}).Error
	if err != nil {
		return err
	}
	post.FrozenAt = nil
	post.FrozenType = ""
	post.FreezeReason = ""
	return nil
}
