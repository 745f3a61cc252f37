package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Categories lists the reason categories offered in the report form.
// Free-text reasons are still accepted on submission.
func (h *ReportHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": models.ReportReasonCategories,
	})
}

// CreateReport files a report against an image. Duplicate reports from
// the same user are rejected with 409; the response never reflects
// whether moderation was triggered.
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	reporterID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.CreateReport(c.Context(), reporterID, &req)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrAlreadyReported):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "You have already reported this image",
			})
		case errors.Is(err, services.ErrImageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Image not found",
			})
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: vErr.Message, Field: vErr.Field,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create report",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}
