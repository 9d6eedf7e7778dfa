package handlers

import (
	"fmt"
	"html"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/repository"
	"github.com/socialorchestrator/api/internal/service"
	"github.com/socialorchestrator/api/pkg/statetoken"
)

type OAuthHandler struct {
	signer   *statetoken.Signer
	registry *provider.Registry
	wr       repository.WorkspaceRepository
	as       service.AccountService
}

func NewOAuthHandler(
	signer *statetoken.Signer,
	registry *provider.Registry,
	wr repository.WorkspaceRepository,
	as service.AccountService) *OAuthHandler {
	return &OAuthHandler{
		signer:   signer,
		registry: registry,
		wr:       wr,
		as:       as,
	}
}

// Authorize hands the client the provider consent URL, with a signed state
// token binding the flow to this workspace and user.
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return writeError(c, models.NewUnauthenticated("invalid session"))
	}

	network, ok := models.ParseNetworkType(c.Params("network"))
	if !ok {
		return writeError(c, models.NewValidation("unknown network type"))
	}

	workspaceID, err := uuid.Parse(c.Query("workspace_id"))
	if err != nil {
		return writeError(c, models.NewValidation("workspace_id is required"))
	}

	isMember, err := h.wr.IsMember(c.Context(), workspaceID, userID)
	if err != nil {
		return writeError(c, err)
	}
	if !isMember {
		return writeError(c, models.NewForbidden("user is not a member of this workspace"))
	}

	ap, ok := h.registry.AuthProvider(network)
	if !ok {
		return writeError(c, models.NewValidation("unknown network type"))
	}

	state := h.signer.Create(workspaceID, userID)
	authURL, err := ap.AuthorizationURL(workspaceID, userID, state)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"authorization_url": authURL,
	})
}

// Callback lands the provider redirect. It is anonymous; the state token is
// the only proof of who started the flow. The response is a small HTML page
// because the browser arrives here directly from the provider.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	network, ok := models.ParseNetworkType(c.Params("network"))
	if !ok {
		return renderErrorPage(c, "This network is not supported.")
	}

	workspaceID, userID, err := h.signer.Verify(c.Query("state"))
	if err != nil {
		slog.Info("state token rejected", "error", err.Error())
		return renderErrorPage(c, "The connection link is invalid or has expired. Please start over.")
	}

	isMember, err := h.wr.IsMember(c.Context(), workspaceID, userID)
	if err != nil {
		return renderErrorPage(c, "Something went wrong. Please try again.")
	}
	if !isMember {
		return renderErrorPage(c, "You are no longer a member of this workspace.")
	}

	ap, ok := h.registry.AuthProvider(network)
	if !ok {
		return renderErrorPage(c, "This network is not supported.")
	}

	result := ap.HandleCallback(c.Context(), c.Query("code"), c.Query("state"))
	if !result.IsSuccess {
		slog.Info("oauth callback failed",
			"network_type", network, "workspace_id", workspaceID, "reason", result.ErrorMessage)
		return renderErrorPage(c, result.ErrorMessage)
	}

	account, err := h.as.ConnectOrUpdate(c.Context(), workspaceID, result)
	if err != nil {
		slog.Error("failed to persist connected account",
			"network_type", network, "workspace_id", workspaceID, "error", err.Error())
		return renderErrorPage(c, "The account could not be saved. Please try again.")
	}

	return renderSuccessPage(c, account.Name)
}

func renderSuccessPage(c *fiber.Ctx, accountName string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Account Connected</title></head>
<body>
<h1>Account connected</h1>
<p>%s was connected successfully. You can close this window.</p>
</body>
</html>`, html.EscapeString(accountName))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(body)
}

func renderErrorPage(c *fiber.Ctx, message string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Connection Failed</title></head>
<body>
<h1>Connection failed</h1>
<p>%s</p>
</body>
</html>`, html.EscapeString(message))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusBadRequest).SendString(body)
}
