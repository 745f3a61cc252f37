package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost accepts a multipart upload: an "image" file plus optional
// title and caption fields.
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "image file is required", Field: "image",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read upload",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read upload",
		})
	}

	post, attachment, err := h.postService.CreatePost(
		c.Context(),
		userID,
		c.FormValue("title"),
		c.FormValue("caption"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: vErr.Message, Field: vErr.Field,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post":       post,
		"attachment": attachment,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	viewerID, _ := middleware.UserID(c)
	isAdmin := middleware.UserRole(c) == "admin"

	post, attachment, imageURL, err := h.postService.GetPost(c.Context(), postID, viewerID, isAdmin)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch post",
		})
	}

	return c.JSON(fiber.Map{
		"post":       post,
		"attachment": attachment,
		"image_url":  imageURL,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	posts, err := h.postService.ListPosts(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch posts",
		})
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	})
}
