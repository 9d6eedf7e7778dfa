package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/metrics"
	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/repository"
)

// PublishService runs one publish attempt for a variant. Execute returns an
// error only for transient failures, which makes the job runner retry the
// task; every other outcome is terminal and returns nil.
type PublishService interface {
	Execute(ctx context.Context, variantID uuid.UUID) error
}

type publishService struct {
	pv       repository.PostVariantRepository
	sa       repository.SocialAccountRepository
	at       repository.AuthTokenRepository
	ma       repository.MediaAssetRepository
	registry *provider.Registry
	mc       metrics.MetricsCollector
	now      func() time.Time
}

func NewPublishService(
	pv repository.PostVariantRepository,
	sa repository.SocialAccountRepository,
	at repository.AuthTokenRepository,
	ma repository.MediaAssetRepository,
	registry *provider.Registry,
	mc metrics.MetricsCollector) PublishService {
	return &publishService{
		pv:       pv,
		sa:       sa,
		at:       at,
		ma:       ma,
		registry: registry,
		mc:       mc,
		now:      time.Now,
	}
}

func (s *publishService) Execute(ctx context.Context, variantID uuid.UUID) error {
	variant, err := s.pv.GetByID(ctx, variantID)
	if err != nil {
		return err
	}
	if variant == nil {
		slog.Info("publish task for unknown variant", "variant_id", variantID)
		return nil
	}
	// The state guard makes redelivery a no-op. A variant that already
	// reached Published or Failed is never touched again.
	if variant.State != models.VariantStateScheduled {
		slog.Info("publish task skipped, variant not scheduled",
			"variant_id", variantID, "state", variant.State)
		return nil
	}

	account, err := s.sa.GetByID(ctx, variant.SocialAccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return s.fail(ctx, variant, nil, "account not found for post variant")
	}

	token, err := s.at.GetBySocialAccountID(ctx, account.ID)
	if err != nil {
		return err
	}
	if token == nil {
		return s.fail(ctx, variant, account, "no auth token available")
	}

	publisher, ok := s.registry.Publisher(account.NetworkType)
	if !ok {
		return s.fail(ctx, variant, account, "no publisher configured for this network")
	}

	var mediaURL *string
	if variant.MediaAssetID != nil {
		asset, err := s.ma.GetByID(ctx, *variant.MediaAssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return s.fail(ctx, variant, account, "media asset not found for post variant")
		}
		mediaURL = &asset.FileURL
	}

	// Cancellation observed before the provider call leaves the variant
	// untouched; the runner may deliver it again.
	if err := ctx.Err(); err != nil {
		return err
	}

	started := s.now()
	result, err := publisher.Publish(ctx, &provider.PublishInput{
		Variant:  variant,
		Account:  account,
		Token:    token,
		MediaURL: mediaURL,
	})
	s.mc.RecordPublishLatency(s.now().Sub(started))

	if err != nil {
		// Transport failure. Record it, then propagate so the job
		// runner's retry policy can act.
		slog.Error("publish attempt failed",
			"variant_id", variant.ID, "network_type", account.NetworkType, "error", err.Error())
		s.mc.RecordPublishTransientFailure(string(account.NetworkType))
		if _, markErr := s.pv.MarkFailed(ctx, variant.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	if !result.IsSuccess {
		// The provider understood the request and rejected it. Terminal.
		return s.fail(ctx, variant, account, result.ErrorMessage)
	}

	published, err := s.pv.MarkPublished(ctx, variant.ID, result.ProviderPostID, s.now().UTC())
	if err != nil {
		return err
	}
	if !published {
		// A concurrent delivery won the conditional update.
		slog.Info("variant already transitioned by a concurrent delivery", "variant_id", variant.ID)
		return nil
	}

	slog.Info("variant published",
		"variant_id", variant.ID,
		"network_type", account.NetworkType,
		"provider_post_id", result.ProviderPostID)
	s.mc.RecordPublishSuccess(string(account.NetworkType))

	return nil
}

// fail records a terminal business failure and swallows it.
func (s *publishService) fail(ctx context.Context, variant *models.PostVariant, account *models.SocialAccount, message string) error {
	network := "unknown"
	if account != nil {
		network = string(account.NetworkType)
	}

	slog.Info("variant publish rejected",
		"variant_id", variant.ID, "network_type", network, "reason", message)
	s.mc.RecordPublishBusinessFailure(network)

	if _, err := s.pv.MarkFailed(ctx, variant.ID, message); err != nil {
		return err
	}
	return nil
}
