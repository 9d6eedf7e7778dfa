package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/transfer"
)

type mockWorkspaceRepo struct {
	GetByIDFunc  func(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	IsMemberFunc func(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
}

func (m *mockWorkspaceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockWorkspaceRepo) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return m.IsMemberFunc(ctx, workspaceID, userID)
}

type mockSocialAccountRepo struct {
	GetByIDFunc                    func(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error)
	GetByWorkspaceFunc             func(ctx context.Context, workspaceID, accountID uuid.UUID) (*models.SocialAccount, error)
	ListByWorkspaceFunc            func(ctx context.Context, workspaceID uuid.UUID) ([]*models.SocialAccount, error)
	CheckByWorkspaceFunc           func(ctx context.Context, accountID, workspaceID uuid.UUID) (bool, error)
	UpsertFunc                     func(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error)
	DeactivateFunc                 func(ctx context.Context, id uuid.UUID) error
	SetRequiresReauthorizationFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSocialAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockSocialAccountRepo) GetByWorkspace(ctx context.Context, workspaceID, accountID uuid.UUID) (*models.SocialAccount, error) {
	return m.GetByWorkspaceFunc(ctx, workspaceID, accountID)
}

func (m *mockSocialAccountRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.SocialAccount, error) {
	return m.ListByWorkspaceFunc(ctx, workspaceID)
}

func (m *mockSocialAccountRepo) CheckByWorkspace(ctx context.Context, accountID, workspaceID uuid.UUID) (bool, error) {
	return m.CheckByWorkspaceFunc(ctx, accountID, workspaceID)
}

func (m *mockSocialAccountRepo) Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error) {
	return m.UpsertFunc(ctx, sa)
}

func (m *mockSocialAccountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.DeactivateFunc(ctx, id)
}

func (m *mockSocialAccountRepo) SetRequiresReauthorization(ctx context.Context, id uuid.UUID) error {
	return m.SetRequiresReauthorizationFunc(ctx, id)
}

type mockAuthTokenRepo struct {
	GetBySocialAccountIDFunc    func(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error)
	UpsertFunc                  func(ctx context.Context, token *models.AuthToken) error
	RemoveBySocialAccountIDFunc func(ctx context.Context, socialAccountID uuid.UUID) error
	ListExpiringBeforeFunc      func(ctx context.Context, deadline time.Time) ([]*models.AuthToken, error)
	UpdateTokensFunc            func(ctx context.Context, socialAccountID uuid.UUID, accessToken string, refreshToken *string, expiresAtUtc *time.Time) error
}

func (m *mockAuthTokenRepo) GetBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error) {
	return m.GetBySocialAccountIDFunc(ctx, socialAccountID)
}

func (m *mockAuthTokenRepo) Upsert(ctx context.Context, token *models.AuthToken) error {
	return m.UpsertFunc(ctx, token)
}

func (m *mockAuthTokenRepo) RemoveBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) error {
	return m.RemoveBySocialAccountIDFunc(ctx, socialAccountID)
}

func (m *mockAuthTokenRepo) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.AuthToken, error) {
	return m.ListExpiringBeforeFunc(ctx, deadline)
}

func (m *mockAuthTokenRepo) UpdateTokens(ctx context.Context, socialAccountID uuid.UUID, accessToken string, refreshToken *string, expiresAtUtc *time.Time) error {
	return m.UpdateTokensFunc(ctx, socialAccountID, accessToken, refreshToken, expiresAtUtc)
}

type mockPostRepo struct {
	CreateFunc         func(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetByWorkspaceFunc func(ctx context.Context, workspaceID, postID uuid.UUID) (*models.Post, error)
	ListFunc           func(ctx context.Context, filter *transfer.ListPostsFilter) ([]*transfer.PostListItem, int, error)
}

func (m *mockPostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	return m.CreateFunc(ctx, tx, post)
}

func (m *mockPostRepo) GetByWorkspace(ctx context.Context, workspaceID, postID uuid.UUID) (*models.Post, error) {
	return m.GetByWorkspaceFunc(ctx, workspaceID, postID)
}

func (m *mockPostRepo) List(ctx context.Context, filter *transfer.ListPostsFilter) ([]*transfer.PostListItem, int, error) {
	return m.ListFunc(ctx, filter)
}

type mockPostVariantRepo struct {
	CreateFunc        func(ctx context.Context, tx *sql.Tx, variant *models.PostVariant) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.PostVariant, error)
	ListByPostIDFunc  func(ctx context.Context, postID uuid.UUID) ([]*models.PostVariant, error)
	MarkPublishedFunc func(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error)
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID, errorMessage string) (bool, error)
}

func (m *mockPostVariantRepo) Create(ctx context.Context, tx *sql.Tx, variant *models.PostVariant) error {
	return m.CreateFunc(ctx, tx, variant)
}

func (m *mockPostVariantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PostVariant, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockPostVariantRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostVariant, error) {
	return m.ListByPostIDFunc(ctx, postID)
}

func (m *mockPostVariantRepo) MarkPublished(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error) {
	return m.MarkPublishedFunc(ctx, id, providerPostID, publishedAtUtc)
}

func (m *mockPostVariantRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (bool, error) {
	return m.MarkFailedFunc(ctx, id, errorMessage)
}

type mockMediaAssetRepo struct {
	CreateFunc           func(ctx context.Context, ma *models.MediaAsset) error
	GetByIDFunc          func(ctx context.Context, assetID uuid.UUID) (*models.MediaAsset, error)
	CheckByWorkspaceFunc func(ctx context.Context, assetID, workspaceID uuid.UUID) (bool, error)
}

func (m *mockMediaAssetRepo) Create(ctx context.Context, ma *models.MediaAsset) error {
	return m.CreateFunc(ctx, ma)
}

func (m *mockMediaAssetRepo) GetByID(ctx context.Context, assetID uuid.UUID) (*models.MediaAsset, error) {
	return m.GetByIDFunc(ctx, assetID)
}

func (m *mockMediaAssetRepo) CheckByWorkspace(ctx context.Context, assetID, workspaceID uuid.UUID) (bool, error) {
	return m.CheckByWorkspaceFunc(ctx, assetID, workspaceID)
}

type mockScheduler struct {
	EnqueueFunc  func(ctx context.Context, variantID uuid.UUID) error
	ScheduleFunc func(ctx context.Context, variantID uuid.UUID, at time.Time) error
}

func (m *mockScheduler) Enqueue(ctx context.Context, variantID uuid.UUID) error {
	return m.EnqueueFunc(ctx, variantID)
}

func (m *mockScheduler) Schedule(ctx context.Context, variantID uuid.UUID, at time.Time) error {
	return m.ScheduleFunc(ctx, variantID, at)
}

type mockAuthProvider struct {
	network models.NetworkType

	RevokeFunc func(ctx context.Context, accessToken string, refreshToken *string)
}

func (m *mockAuthProvider) NetworkType() models.NetworkType { return m.network }

func (m *mockAuthProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	return "https://example.com/authorize", nil
}

func (m *mockAuthProvider) HandleCallback(ctx context.Context, code, state string) provider.OAuthResult {
	return provider.Failure(m.network, "not implemented")
}

func (m *mockAuthProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {
	if m.RevokeFunc != nil {
		m.RevokeFunc(ctx, accessToken, refreshToken)
	}
}

type mockPublisher struct {
	network models.NetworkType

	PublishFunc func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error)
}

func (m *mockPublisher) NetworkType() models.NetworkType { return m.network }

func (m *mockPublisher) Publish(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
	return m.PublishFunc(ctx, in)
}

type noopMetrics struct{}

func (noopMetrics) RecordPublishSuccess(network string)          {}
func (noopMetrics) RecordPublishBusinessFailure(network string)  {}
func (noopMetrics) RecordPublishTransientFailure(network string) {}
func (noopMetrics) RecordPublishLatency(duration time.Duration)  {}
func (noopMetrics) RecordAccountConnected(network string)        {}
func (noopMetrics) RecordTokenRefreshed()                        {}
func (noopMetrics) RecordTokenRefreshFailed()                    {}
