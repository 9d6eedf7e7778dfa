package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/service"
	"github.com/socialorchestrator/api/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}

	var payload transfer.CreatePostPayload
	if err := c.BodyParser(&payload); err != nil {
		slog.Info(err.Error())
		return writeError(c, models.NewValidation("unable to parse request body"))
	}

	detail, err := h.s.CreatePostWithVariants(c.Context(), workspaceID, userID, &payload)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(detail)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid post id"))
	}

	detail, err := h.s.GetPost(c.Context(), workspaceID, userID, postID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(detail)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}

	filter := &transfer.ListPostsFilter{
		WorkspaceID: workspaceID,
		PageNumber:  c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 20),
	}

	if state := c.Query("state"); state != "" {
		filter.State = &state
	}
	if raw := c.Query("social_account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return writeError(c, models.NewValidation("invalid social_account_id"))
		}
		filter.SocialAccountID = &accountID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return writeError(c, models.NewValidation("invalid from timestamp, expected RFC 3339"))
		}
		filter.FromUtc = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return writeError(c, models.NewValidation("invalid to timestamp, expected RFC 3339"))
		}
		filter.ToUtc = &to
	}

	page, err := h.s.ListPosts(c.Context(), userID, filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}
