package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminUsersHandler serves the admin user management panel.
type AdminUsersHandler struct {
	userService *services.UserService
}

func NewAdminUsersHandler(userService *services.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{userService: userService}
}

func (h *AdminUsersHandler) ListUsers(c *fiber.Ctx) error {
	status := c.Query("status", "all")
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit > 100 {
		limit = 100
	}

	users, stats, err := h.userService.ListUsers(status, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"stats": stats,
	})
}

func (h *AdminUsersHandler) SuspendUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	var req dto.SuspendUserRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Suspend(userID, req.Reason, req.DurationDays)
	return h.respond(c, user, err)
}

func (h *AdminUsersHandler) UnsuspendUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	user, err := h.userService.Unsuspend(userID)
	return h.respond(c, user, err)
}

func (h *AdminUsersHandler) BanUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	var req dto.BanUserRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Ban(userID, req.Reason)
	return h.respond(c, user, err)
}

func (h *AdminUsersHandler) UnbanUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	user, err := h.userService.Unban(userID)
	return h.respond(c, user, err)
}

func (h *AdminUsersHandler) respond(c *fiber.Ctx, user *models.User, err error) error {
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update user",
		})
	}
	return c.JSON(user)
}
