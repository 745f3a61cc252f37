package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type PostService struct {
	db      *gorm.DB
	blobs   storage.ObjectStore
	freezer *PostFreezer
}

func NewPostService(db *gorm.DB, blobs storage.ObjectStore, freezer *PostFreezer) *PostService {
	return &PostService{db: db, blobs: blobs, freezer: freezer}
}

// CreatePost uploads the image to object storage and records the post
// with its attachment. The image is uploaded first; a failed insert
// leaves an orphan object rather than a post without bytes.
func (s *PostService) CreatePost(ctx context.Context, userID uuid.UUID, title, caption, filename, contentType string, data []byte) (*models.Post, *models.ImageAttachment, error) {
	if len(data) == 0 {
		return nil, nil, &ValidationError{Field: "image", Message: "image file is required"}
	}
	if !allowedImageTypes[contentType] {
		return nil, nil, &ValidationError{Field: "image", Message: "unsupported image type: " + contentType}
	}

	postID := uuid.New()
	attachmentID := uuid.New()
	key := fmt.Sprintf("images/%s%s", attachmentID, strings.ToLower(path.Ext(filename)))

	if err := s.blobs.Upload(ctx, key, contentType, data); err != nil {
		return nil, nil, fmt.Errorf("failed to store image: %w", err)
	}

	post := models.Post{
		ID:      postID,
		UserID:  userID,
		Title:   title,
		Caption: caption,
	}
	attachment := models.ImageAttachment{
		ID:          attachmentID,
		PostID:      postID,
		StorageKey:  key,
		ContentType: contentType,
		Filename:    filename,
		ByteSize:    int64(len(data)),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Create(&attachment).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &post, &attachment, nil
}

// GetPost hides frozen posts from everyone but their owner and admins.
// The returned URL is a short-lived presigned link to the image bytes;
// it is empty when the post has no attachment or presigning fails.
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, isAdmin bool) (*models.Post, *models.ImageAttachment, string, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrPostNotFound
		}
		return nil, nil, "", err
	}

	if post.Frozen() && post.UserID != viewerID && !isAdmin {
		return nil, nil, "", ErrPostNotFound
	}

	var attachment models.ImageAttachment
	if err := s.db.WithContext(ctx).First(&attachment, "post_id = ?", post.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &post, &attachment, "", nil
		}
		return nil, nil, "", err
	}

	imageURL, err := s.blobs.PresignDownload(ctx, attachment.StorageKey, imageURLTTL)
	if err != nil {
		slog.Error("failed to presign post image", "post_id", post.ID, "error", err)
		imageURL = ""
	}
	return &post, &attachment, imageURL, nil
}

func (s *PostService) ListPosts(limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.
		Where("frozen_at IS NULL").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

// FrozenPosts lists frozen posts for the admin panel, optionally
// filtered to temporary or permanent freezes.
func (s *PostService) FrozenPosts(filter string) ([]models.Post, dto.FrozenPostStats, error) {
	var stats dto.FrozenPostStats

	base := s.db.Model(&models.Post{}).Where("frozen_at IS NOT NULL")
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("frozen_type = ?", models.FreezeTemporary).Count(&stats.Temporary).Error; err != nil {
		return nil, stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("frozen_type = ?", models.FreezePermanent).Count(&stats.Permanent).Error; err != nil {
		return nil, stats, err
	}

	query := s.db.Where("frozen_at IS NOT NULL")
	switch filter {
	case models.FreezeTemporary, models.FreezePermanent:
		query = query.Where("frozen_type = ?", filter)
	}

	var posts []models.Post
	if err := query.Order("frozen_at DESC").Find(&posts).Error; err != nil {
		return nil, stats, err
	}
	return posts, stats, nil
}

func (s *PostService) Unfreeze(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if err := s.freezer.Unfreeze(ctx, &post); err != nil {
		return nil, fmt.Errorf("failed to unfreeze post: %w", err)
	}
	return &post, nil
}

// FreezePermanent upgrades (or applies) a permanent freeze by admin
// decision.
func (s *PostService) FreezePermanent(ctx context.Context, id uuid.UUID, reason string) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if reason == "" {
		reason = "Permanently frozen by admin"
	}
	if err := s.freezer.Freeze(ctx, &post, models.FreezePermanent, reason); err != nil {
		return nil, fmt.Errorf("failed to freeze post: %w", err)
	}
	return &post, nil
}
