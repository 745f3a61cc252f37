package logging

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLogDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	ddl := `CREATE TABLE system_logs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		message TEXT,
		trace_id TEXT,
		user_id TEXT,
		action TEXT,
		error TEXT,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		extra TEXT,
		created_at DATETIME
	)`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	return db
}

func seedLog(t *testing.T, db *gorm.DB, age time.Duration) uuid.UUID {
	t.Helper()
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: time.Now().Add(-age),
		Level:     "ERROR",
		Message:   "boom",
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed log: %v", err)
	}
	return entry.ID
}

func TestDeleteExpiredLogs_HonorsRetention(t *testing.T) {
	db := newLogDB(t)

	old := seedLog(t, db, 40*24*time.Hour)
	recent := seedLog(t, db, 2*24*time.Hour)

	deleted, err := deleteExpiredLogs(db, 30)
	if err != nil {
		t.Fatalf("deleteExpiredLogs failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}

	var remaining []models.SystemLog
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("failed to list logs: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != recent {
		t.Fatalf("expected only the recent entry to survive, got %d rows", len(remaining))
	}
	if old == remaining[0].ID {
		t.Fatalf("expired entry survived cleanup")
	}
}

func TestDeleteExpiredLogs_ShorterRetention(t *testing.T) {
	db := newLogDB(t)

	seedLog(t, db, 10*24*time.Hour)
	seedLog(t, db, 10*24*time.Hour)
	seedLog(t, db, 24*time.Hour)

	deleted, err := deleteExpiredLogs(db, 7)
	if err != nil {
		t.Fatalf("deleteExpiredLogs failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted rows with 7-day retention, got %d", deleted)
	}
}
