package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService backs the admin user management panel: listing with
// moderation-state filters and suspend/ban transitions.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ListUsers(statusFilter string, limit int) ([]models.User, dto.UserStats, error) {
	var stats dto.UserStats

	var all []models.User
	if err := s.db.Order("created_at DESC").Find(&all).Error; err != nil {
		return nil, stats, err
	}

	// Suspension is time-based, so the active/suspended split cannot be
	// a pure SQL predicate.
	stats.Total = int64(len(all))
	for i := range all {
		switch {
		case all[i].Banned():
			stats.Banned++
		case all[i].Suspended():
			stats.Suspended++
		default:
			stats.Active++
		}
		if all[i].Role == "admin" {
			stats.Admin++
		}
	}

	filtered := make([]models.User, 0, len(all))
	for i := range all {
		switch statusFilter {
		case "active":
			if !all[i].Active() {
				continue
			}
		case "suspended":
			if !all[i].Suspended() {
				continue
			}
		case "banned":
			if !all[i].Banned() {
				continue
			}
		case "admin":
			if all[i].Role != "admin" {
				continue
			}
		}
		filtered = append(filtered, all[i])
		if len(filtered) >= limit {
			break
		}
	}

	return filtered, stats, nil
}

func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Suspend(id uuid.UUID, reason string, durationDays int) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if durationDays <= 0 {
		durationDays = 7
	}
	until := time.Now().AddDate(0, 0, durationDays)

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"suspended_until": until,
		"suspend_reason":  strings.TrimSpace(reason),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}
	user.SuspendedUntil = &until
	user.SuspendReason = strings.TrimSpace(reason)
	return user, nil
}

func (s *UserService) Unsuspend(id uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"suspended_until": nil,
		"suspend_reason":  "",
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to unsuspend user: %w", err)
	}
	user.SuspendedUntil = nil
	user.SuspendReason = ""
	return user, nil
}

func (s *UserService) Ban(id uuid.UUID, reason string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"banned_at":  now,
		"ban_reason": strings.TrimSpace(reason),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to ban user: %w", err)
	}
	user.BannedAt = &now
	user.BanReason = strings.TrimSpace(reason)
	return user, nil
}

func (s *UserService) Unban(id uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"banned_at":  nil,
		"ban_reason": "",
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to unban user: %w", err)
	}
	user.BannedAt = nil
	user.BanReason = ""
	return user, nil
}
