package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSuspend_DefaultsToSevenDays(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, "user@example.com")

	suspended, err := svc.Suspend(user.ID, "repeated violations", 0)
	if err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if suspended.SuspendedUntil == nil {
		t.Fatalf("expected suspended_until set")
	}
	want := time.Now().AddDate(0, 0, 7)
	if diff := suspended.SuspendedUntil.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected roughly 7 days, got until %v", suspended.SuspendedUntil)
	}
	if !suspended.Suspended() || suspended.Active() {
		t.Fatalf("expected user inactive while suspended")
	}

	restored, err := svc.Unsuspend(user.ID)
	if err != nil {
		t.Fatalf("Unsuspend failed: %v", err)
	}
	if restored.Suspended() || !restored.Active() {
		t.Fatalf("expected user active after unsuspend")
	}
}

func TestBanAndUnban(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, "user@example.com")

	banned, err := svc.Ban(user.ID, "ban evasion")
	if err != nil {
		t.Fatalf("Ban failed: %v", err)
	}
	if !banned.Banned() || banned.BanReason != "ban evasion" {
		t.Fatalf("expected banned user with reason, got %+v", banned)
	}

	restored, err := svc.Unban(user.ID)
	if err != nil {
		t.Fatalf("Unban failed: %v", err)
	}
	if restored.Banned() || restored.BanReason != "" {
		t.Fatalf("expected ban cleared, got %+v", restored)
	}
}

func TestListUsers_FiltersAndStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	active := createTestUser(t, db, "active@example.com")
	toSuspend := createTestUser(t, db, "suspended@example.com")
	toBan := createTestUser(t, db, "banned@example.com")

	if _, err := svc.Suspend(toSuspend.ID, "spam", 3); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if _, err := svc.Ban(toBan.ID, "abuse"); err != nil {
		t.Fatalf("Ban failed: %v", err)
	}

	users, stats, err := svc.ListUsers("active", 50)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if stats.Total != 3 || stats.Active != 1 || stats.Suspended != 1 || stats.Banned != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(users) != 1 || users[0].ID != active.ID {
		t.Fatalf("expected only the active user, got %d users", len(users))
	}

	banned, _, err := svc.ListUsers("banned", 50)
	if err != nil {
		t.Fatalf("ListUsers(banned) failed: %v", err)
	}
	if len(banned) != 1 || banned[0].ID != toBan.ID {
		t.Fatalf("expected only the banned user, got %d users", len(banned))
	}
}

func TestUserLookup_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.GetUser(uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Suspend(uuid.New(), "x", 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound from Suspend, got %v", err)
	}
}
