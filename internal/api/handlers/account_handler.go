package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/service"
)

type AccountHandler struct {
	s service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{s: service}
}

func (h *AccountHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}

	accounts, err := h.s.List(c.Context(), workspaceID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) DisconnectSocialAccount(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid workspace id"))
	}
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return writeError(c, models.NewValidation("invalid account id"))
	}

	if err := h.s.Disconnect(c.Context(), workspaceID, userID, accountID); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
