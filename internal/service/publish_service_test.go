package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
)

type publishFixture struct {
	variant *models.PostVariant
	account *models.SocialAccount
	token   *models.AuthToken

	pv *mockPostVariantRepo
	sa *mockSocialAccountRepo
	at *mockAuthTokenRepo
	ma *mockMediaAssetRepo

	markedFailed    []string
	markedPublished []string
}

func newPublishFixture() *publishFixture {
	accountID := uuid.New()
	f := &publishFixture{
		variant: &models.PostVariant{
			ID:              uuid.New(),
			PostID:          uuid.New(),
			SocialAccountID: accountID,
			Type:            models.VariantTypeStatus,
			Text:            "hello",
			State:           models.VariantStateScheduled,
		},
		account: &models.SocialAccount{
			ID:          accountID,
			NetworkType: models.NetworkFacebook,
			IsActive:    true,
		},
		token: &models.AuthToken{
			ID:              uuid.New(),
			SocialAccountID: accountID,
			AccessToken:     "token-value",
		},
	}

	f.pv = &mockPostVariantRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.PostVariant, error) {
			return f.variant, nil
		},
		MarkPublishedFunc: func(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error) {
			f.markedPublished = append(f.markedPublished, providerPostID)
			return true, nil
		},
		MarkFailedFunc: func(ctx context.Context, id uuid.UUID, errorMessage string) (bool, error) {
			f.markedFailed = append(f.markedFailed, errorMessage)
			return true, nil
		},
	}
	f.sa = &mockSocialAccountRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
			return f.account, nil
		},
	}
	f.at = &mockAuthTokenRepo{
		GetBySocialAccountIDFunc: func(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error) {
			return f.token, nil
		},
	}
	f.ma = &mockMediaAssetRepo{
		GetByIDFunc: func(ctx context.Context, assetID uuid.UUID) (*models.MediaAsset, error) {
			return nil, nil
		},
	}

	return f
}

func (f *publishFixture) service(pub *mockPublisher) PublishService {
	registry := provider.NewRegistry()
	if pub != nil {
		registry.RegisterPublisher(pub)
	}
	return NewPublishService(f.pv, f.sa, f.at, f.ma, registry, noopMetrics{})
}

func TestExecutePublishesScheduledVariant(t *testing.T) {
	f := newPublishFixture()
	var got *provider.PublishInput
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			got = in
			return provider.PublishResult{IsSuccess: true, ProviderPostID: "fb_123"}, nil
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.variant, got.Variant)
	assert.Equal(t, f.token, got.Token)
	assert.Equal(t, []string{"fb_123"}, f.markedPublished)
	assert.Empty(t, f.markedFailed)
}

func TestExecuteSkipsNonScheduledVariant(t *testing.T) {
	for _, state := range []string{
		models.VariantStateDraft,
		models.VariantStatePublished,
		models.VariantStateFailed,
		models.VariantStateCancelled,
	} {
		f := newPublishFixture()
		f.variant.State = state
		pub := &mockPublisher{
			network: models.NetworkFacebook,
			PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
				t.Fatalf("publisher must not be called for state %s", state)
				return provider.PublishResult{}, nil
			},
		}

		err := f.service(pub).Execute(context.Background(), f.variant.ID)

		require.NoError(t, err, "state %s", state)
		assert.Empty(t, f.markedPublished)
		assert.Empty(t, f.markedFailed)
	}
}

func TestExecuteUnknownVariantIsNoop(t *testing.T) {
	f := newPublishFixture()
	f.pv.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.PostVariant, error) {
		return nil, nil
	}

	err := f.service(nil).Execute(context.Background(), uuid.New())
	assert.NoError(t, err)
}

func TestExecuteMissingAccountFailsTerminally(t *testing.T) {
	f := newPublishFixture()
	f.sa.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
		return nil, nil
	}

	err := f.service(nil).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"account not found for post variant"}, f.markedFailed)
}

func TestExecuteMissingTokenFailsTerminally(t *testing.T) {
	f := newPublishFixture()
	f.at.GetBySocialAccountIDFunc = func(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error) {
		return nil, nil
	}

	err := f.service(nil).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"no auth token available"}, f.markedFailed)
}

func TestExecuteMissingPublisherFailsTerminally(t *testing.T) {
	f := newPublishFixture()

	err := f.service(nil).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"no publisher configured for this network"}, f.markedFailed)
}

func TestExecuteTransportErrorIsRecordedAndPropagated(t *testing.T) {
	f := newPublishFixture()
	transportErr := errors.New("connection reset")
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			return provider.PublishResult{}, transportErr
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)

	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, []string{"connection reset"}, f.markedFailed)
	assert.Empty(t, f.markedPublished)
}

func TestExecuteProviderRejectionIsTerminal(t *testing.T) {
	f := newPublishFixture()
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			return provider.PublishResult{IsSuccess: false, ErrorMessage: "duplicate content"}, nil
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"duplicate content"}, f.markedFailed)
	assert.Empty(t, f.markedPublished)
}

func TestExecuteCancelledBeforeCallLeavesStateUntouched(t *testing.T) {
	f := newPublishFixture()
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			t.Fatal("publisher must not be called after cancellation")
			return provider.PublishResult{}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.service(pub).Execute(ctx, f.variant.ID)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.markedPublished)
	assert.Empty(t, f.markedFailed)
}

func TestExecuteResolvesMediaURL(t *testing.T) {
	f := newPublishFixture()
	assetID := uuid.New()
	f.variant.Type = models.VariantTypePhoto
	f.variant.MediaAssetID = &assetID
	f.ma.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error) {
		require.Equal(t, assetID, id)
		return &models.MediaAsset{ID: id, FileURL: "https://cdn.example.com/a.jpg"}, nil
	}

	var got *provider.PublishInput
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			got = in
			return provider.PublishResult{IsSuccess: true, ProviderPostID: "fb_9"}, nil
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	require.NotNil(t, got.MediaURL)
	assert.Equal(t, "https://cdn.example.com/a.jpg", *got.MediaURL)
}

func TestExecuteMissingMediaAssetFailsTerminally(t *testing.T) {
	f := newPublishFixture()
	assetID := uuid.New()
	f.variant.MediaAssetID = &assetID
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			t.Fatal("publisher must not be called without the media asset")
			return provider.PublishResult{}, nil
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"media asset not found for post variant"}, f.markedFailed)
}

func TestExecuteLostConditionalUpdateIsNoop(t *testing.T) {
	f := newPublishFixture()
	f.pv.MarkPublishedFunc = func(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error) {
		return false, nil
	}
	pub := &mockPublisher{
		network: models.NetworkFacebook,
		PublishFunc: func(ctx context.Context, in *provider.PublishInput) (provider.PublishResult, error) {
			return provider.PublishResult{IsSuccess: true, ProviderPostID: "fb_1"}, nil
		},
	}

	err := f.service(pub).Execute(context.Background(), f.variant.ID)
	assert.NoError(t, err)
}
