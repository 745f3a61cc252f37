package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// FrozenPostsHandler serves the admin frozen-posts panel.
type FrozenPostsHandler struct {
	postService *services.PostService
}

func NewFrozenPostsHandler(postService *services.PostService) *FrozenPostsHandler {
	return &FrozenPostsHandler{postService: postService}
}

func (h *FrozenPostsHandler) ListFrozenPosts(c *fiber.Ctx) error {
	filter := c.Query("filter", "all")

	posts, stats, err := h.postService.FrozenPosts(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch frozen posts",
		})
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"stats": stats,
	})
}

func (h *FrozenPostsHandler) UnfreezePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	post, err := h.postService.Unfreeze(c.Context(), postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to unfreeze post",
		})
	}

	return c.JSON(post)
}

func (h *FrozenPostsHandler) FreezePostPermanently(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	var req dto.FreezeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	post, err := h.postService.FreezePermanent(c.Context(), postID, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to freeze post",
		})
	}

	return c.JSON(post)
}
