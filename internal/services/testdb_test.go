package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database. The schema is
// declared by hand because the model tags carry Postgres defaults
// (gen_random_uuid) that SQLite cannot execute; tests always set IDs
// explicitly.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps the schema visible across pooled
	// connections while isolating each test's database.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	ddl := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			suspended_until DATETIME,
			suspend_reason TEXT NOT NULL DEFAULT '',
			banned_at DATETIME,
			ban_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			expires_at DATETIME,
			revoked BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME
		)`,
		`CREATE TABLE posts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			frozen_at DATETIME,
			frozen_type TEXT NOT NULL DEFAULT '',
			freeze_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE image_attachments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			storage_key TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL DEFAULT '',
			byte_size INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME
		)`,
		`CREATE TABLE image_reports (
			id TEXT PRIMARY KEY,
			attachment_id TEXT NOT NULL,
			reporter_id TEXT,
			reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			reviewer_id TEXT,
			reviewed_at DATETIME,
			ai_flagged BOOLEAN NOT NULL DEFAULT 0,
			ai_confidence REAL NOT NULL DEFAULT 0,
			ai_categories TEXT,
			ai_detected_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX idx_reports_attachment_reporter
			ON image_reports (attachment_id, reporter_id)`,
		`CREATE UNIQUE INDEX idx_reports_system
			ON image_reports (attachment_id) WHERE reporter_id IS NULL`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.New(),
		Email: email,
		Role:  "user",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPostWithImage(t *testing.T, db *gorm.DB, owner *models.User) (*models.Post, *models.ImageAttachment) {
	t.Helper()
	post := &models.Post{
		ID:     uuid.New(),
		UserID: owner.ID,
		Title:  "test post",
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	attachment := &models.ImageAttachment{
		ID:          uuid.New(),
		PostID:      post.ID,
		StorageKey:  "images/" + attachmentKeySuffix(post.ID),
		ContentType: "image/jpeg",
		Filename:    "photo.jpg",
		ByteSize:    1024,
	}
	if err := db.Create(attachment).Error; err != nil {
		t.Fatalf("failed to create test attachment: %v", err)
	}
	return post, attachment
}

func attachmentKeySuffix(id uuid.UUID) string {
	return id.String() + "-" + time.Now().Format("150405.000000000") + ".jpg"
}
