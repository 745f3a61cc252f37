package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type queueStatus interface {
	Ping(ctx context.Context) error
	Length(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	queue queueStatus
}

func NewHealthHandler(queue queueStatus) *HealthHandler {
	return &HealthHandler{queue: queue}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	queueState := "ok"
	var depth int64
	if err := h.queue.Ping(c.Context()); err != nil {
		queueState = "unhealthy: " + err.Error()
	} else if n, err := h.queue.Length(c.Context()); err == nil {
		depth = n
	}

	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		Queue:      queueState,
		QueueDepth: depth,
	})
}
