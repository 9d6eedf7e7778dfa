package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/metrics"
	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/repository"
	"github.com/socialorchestrator/api/internal/transfer"
)

type AccountService interface {
	// ConnectOrUpdate persists a successful OAuth callback: the social
	// account is upserted on its provider identity and its stored
	// credentials are replaced.
	ConnectOrUpdate(ctx context.Context, workspaceID uuid.UUID, result provider.OAuthResult) (*models.SocialAccount, error)
	List(ctx context.Context, workspaceID, userID uuid.UUID) ([]*transfer.SocialAccountSummary, error)
	Disconnect(ctx context.Context, workspaceID, userID, accountID uuid.UUID) error
}

type accountService struct {
	wr       repository.WorkspaceRepository
	sa       repository.SocialAccountRepository
	at       repository.AuthTokenRepository
	registry *provider.Registry
	mc       metrics.MetricsCollector
}

func NewAccountService(
	wr repository.WorkspaceRepository,
	sa repository.SocialAccountRepository,
	at repository.AuthTokenRepository,
	registry *provider.Registry,
	mc metrics.MetricsCollector) AccountService {
	return &accountService{
		wr:       wr,
		sa:       sa,
		at:       at,
		registry: registry,
		mc:       mc,
	}
}

func (s *accountService) ConnectOrUpdate(ctx context.Context, workspaceID uuid.UUID, result provider.OAuthResult) (*models.SocialAccount, error) {
	if !result.IsSuccess {
		return nil, models.NewValidation(result.ErrorMessage)
	}
	if result.ExternalAccountID == "" || result.AccountName == "" || result.AccessToken == "" {
		return nil, models.NewValidation("provider result is missing account identity or credentials")
	}

	account := &models.SocialAccount{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		NetworkType:       result.NetworkType,
		ExternalAccountID: result.ExternalAccountID,
		Name:              result.AccountName,
		Username:          result.AccountUsername,
	}

	saved, err := s.sa.Upsert(ctx, account)
	if err != nil {
		return nil, err
	}

	token := &models.AuthToken{
		ID:              uuid.New(),
		SocialAccountID: saved.ID,
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		ExpiresAtUtc:    result.ExpiresAtUtc,
		Scopes:          strings.Join(result.Scopes, ","),
	}
	if err := s.at.Upsert(ctx, token); err != nil {
		return nil, err
	}

	slog.Info("social account connected",
		"workspace_id", workspaceID,
		"network_type", saved.NetworkType,
		"social_account_id", saved.ID)
	s.mc.RecordAccountConnected(string(saved.NetworkType))

	return saved, nil
}

func (s *accountService) List(ctx context.Context, workspaceID, userID uuid.UUID) ([]*transfer.SocialAccountSummary, error) {
	isMember, err := s.wr.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.NewForbidden("user is not a member of this workspace")
	}

	accounts, err := s.sa.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*transfer.SocialAccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, transfer.NewSocialAccountSummary(a))
	}
	return summaries, nil
}

// Disconnect revokes upstream, deletes the stored credentials, and
// deactivates the account, in that order. The account row itself survives
// so published variants keep a valid reference.
func (s *accountService) Disconnect(ctx context.Context, workspaceID, userID, accountID uuid.UUID) error {
	isMember, err := s.wr.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return models.NewForbidden("user is not a member of this workspace")
	}

	account, err := s.sa.GetByWorkspace(ctx, workspaceID, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return models.NewNotFound("social account not found in this workspace")
	}

	token, err := s.at.GetBySocialAccountID(ctx, accountID)
	if err != nil {
		return err
	}

	if token != nil {
		if ap, ok := s.registry.AuthProvider(account.NetworkType); ok {
			ap.Revoke(ctx, token.AccessToken, token.RefreshToken)
		}
		if err := s.at.RemoveBySocialAccountID(ctx, accountID); err != nil {
			return err
		}
	}

	if err := s.sa.Deactivate(ctx, accountID); err != nil {
		return err
	}

	slog.Info("social account disconnected",
		"workspace_id", workspaceID,
		"social_account_id", accountID)

	return nil
}
