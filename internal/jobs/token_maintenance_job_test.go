package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
)

type stubAuthTokenRepo struct {
	tokens  []*models.AuthToken
	updated map[uuid.UUID]string
}

func (s *stubAuthTokenRepo) GetBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error) {
	return nil, nil
}

func (s *stubAuthTokenRepo) Upsert(ctx context.Context, token *models.AuthToken) error {
	return nil
}

func (s *stubAuthTokenRepo) RemoveBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) error {
	return nil
}

func (s *stubAuthTokenRepo) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.AuthToken, error) {
	return s.tokens, nil
}

func (s *stubAuthTokenRepo) UpdateTokens(ctx context.Context, socialAccountID uuid.UUID, accessToken string, refreshToken *string, expiresAtUtc *time.Time) error {
	if s.updated == nil {
		s.updated = make(map[uuid.UUID]string)
	}
	s.updated[socialAccountID] = accessToken
	return nil
}

type stubSocialAccountRepo struct {
	accounts map[uuid.UUID]*models.SocialAccount
	flagged  []uuid.UUID
}

func (s *stubSocialAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	return s.accounts[id], nil
}

func (s *stubSocialAccountRepo) GetByWorkspace(ctx context.Context, workspaceID, accountID uuid.UUID) (*models.SocialAccount, error) {
	return nil, nil
}

func (s *stubSocialAccountRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (s *stubSocialAccountRepo) CheckByWorkspace(ctx context.Context, accountID, workspaceID uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubSocialAccountRepo) Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error) {
	return sa, nil
}

func (s *stubSocialAccountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubSocialAccountRepo) SetRequiresReauthorization(ctx context.Context, id uuid.UUID) error {
	s.flagged = append(s.flagged, id)
	return nil
}

type refreshingProvider struct {
	network    models.NetworkType
	refreshErr error
}

func (p *refreshingProvider) NetworkType() models.NetworkType { return p.network }

func (p *refreshingProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	return "", nil
}

func (p *refreshingProvider) HandleCallback(ctx context.Context, code, state string) provider.OAuthResult {
	return provider.Failure(p.network, "not implemented")
}

func (p *refreshingProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {}

func (p *refreshingProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *string, *time.Time, error) {
	if p.refreshErr != nil {
		return "", nil, nil, p.refreshErr
	}
	expires := time.Now().Add(time.Hour).UTC()
	return "new-access", nil, &expires, nil
}

type noopMetrics struct {
	refreshed int
	failed    int
}

func (m *noopMetrics) RecordPublishSuccess(network string)          {}
func (m *noopMetrics) RecordPublishBusinessFailure(network string)  {}
func (m *noopMetrics) RecordPublishTransientFailure(network string) {}
func (m *noopMetrics) RecordPublishLatency(duration time.Duration)  {}
func (m *noopMetrics) RecordAccountConnected(network string)        {}
func (m *noopMetrics) RecordTokenRefreshed()                        { m.refreshed++ }
func (m *noopMetrics) RecordTokenRefreshFailed()                    { m.failed++ }

func TestRefreshTokensRenewsExpiringToken(t *testing.T) {
	accountID := uuid.New()
	refresh := "refresh-value"

	at := &stubAuthTokenRepo{
		tokens: []*models.AuthToken{
			{ID: uuid.New(), SocialAccountID: accountID, AccessToken: "old", RefreshToken: &refresh},
		},
	}
	sa := &stubSocialAccountRepo{
		accounts: map[uuid.UUID]*models.SocialAccount{
			accountID: {ID: accountID, NetworkType: models.NetworkTwitter, IsActive: true},
		},
	}

	registry := provider.NewRegistry()
	registry.RegisterAuthProvider(&refreshingProvider{network: models.NetworkTwitter})

	mc := &noopMetrics{}
	NewTokenMaintenanceJob(at, sa, registry, mc).RefreshTokens()

	assert.Equal(t, "new-access", at.updated[accountID])
	assert.Empty(t, sa.flagged)
	assert.Equal(t, 1, mc.refreshed)
}

func TestRefreshTokensFlagsAccountWhenRefreshFails(t *testing.T) {
	accountID := uuid.New()
	refresh := "refresh-value"

	at := &stubAuthTokenRepo{
		tokens: []*models.AuthToken{
			{ID: uuid.New(), SocialAccountID: accountID, AccessToken: "old", RefreshToken: &refresh},
		},
	}
	sa := &stubSocialAccountRepo{
		accounts: map[uuid.UUID]*models.SocialAccount{
			accountID: {ID: accountID, NetworkType: models.NetworkTwitter, IsActive: true},
		},
	}

	registry := provider.NewRegistry()
	registry.RegisterAuthProvider(&refreshingProvider{
		network:    models.NetworkTwitter,
		refreshErr: errors.New("invalid_grant"),
	})

	mc := &noopMetrics{}
	NewTokenMaintenanceJob(at, sa, registry, mc).RefreshTokens()

	assert.Empty(t, at.updated)
	assert.Equal(t, []uuid.UUID{accountID}, sa.flagged)
	assert.Equal(t, 1, mc.failed)
}

func TestRefreshTokensFlagsAccountWithoutRefreshSupport(t *testing.T) {
	accountID := uuid.New()

	at := &stubAuthTokenRepo{
		tokens: []*models.AuthToken{
			// No refresh token stored.
			{ID: uuid.New(), SocialAccountID: accountID, AccessToken: "old"},
		},
	}
	sa := &stubSocialAccountRepo{
		accounts: map[uuid.UUID]*models.SocialAccount{
			accountID: {ID: accountID, NetworkType: models.NetworkTwitter, IsActive: true},
		},
	}

	registry := provider.NewRegistry()
	registry.RegisterAuthProvider(&refreshingProvider{network: models.NetworkTwitter})

	NewTokenMaintenanceJob(at, sa, registry, &noopMetrics{}).RefreshTokens()

	assert.Empty(t, at.updated)
	assert.Equal(t, []uuid.UUID{accountID}, sa.flagged)
}
