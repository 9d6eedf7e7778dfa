package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/service"
)

type AssetHandler struct {
	s service.AssetService
}

func NewAssetHandler(service service.AssetService) *AssetHandler {
	return &AssetHandler{s: service}
}

func (h *AssetHandler) UploadAsset(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, models.NewValidation("no file provided"))
	}

	asset, err := h.s.Upload(c.Context(), workspaceID, userID, fh)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}
