package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminReportsHandler serves the admin review queue.
type AdminReportsHandler struct {
	reportService *services.ReportService
}

func NewAdminReportsHandler(reportService *services.ReportService) *AdminReportsHandler {
	return &AdminReportsHandler{reportService: reportService}
}

func (h *AdminReportsHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "all")
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.reportService.ListReports(status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	stats, err := h.reportService.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report stats",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"stats":   stats,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetReport returns the report plus every other report on the same
// attachment, so the reviewer sees the image's full history, and a
// presigned link to the image itself.
func (h *AdminReportsHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, siblings, imageURL, err := h.reportService.GetReport(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(fiber.Map{
		"report":      report,
		"all_reports": siblings,
		"image_url":   imageURL,
	})
}

func (h *AdminReportsHandler) ConfirmReport(c *fiber.Ctx) error {
	return h.reviewReport(c, h.reportService.Confirm)
}

func (h *AdminReportsHandler) DismissReport(c *fiber.Ctx) error {
	return h.reviewReport(c, h.reportService.Dismiss)
}

func (h *AdminReportsHandler) reviewReport(c *fiber.Ctx, action func(uuid.UUID, uuid.UUID) (*models.ImageReport, error)) error {
	reviewerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := action(reportID, reviewerID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update report",
		})
	}

	return c.JSON(report)
}
