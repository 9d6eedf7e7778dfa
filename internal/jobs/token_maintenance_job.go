package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/socialorchestrator/api/internal/metrics"
	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/repository"
)

// TokenMaintenanceJob renews auth tokens that are about to expire. Networks
// whose auth provider does not implement refresh get flagged for manual
// reauthorization instead.
type TokenMaintenanceJob struct {
	at       repository.AuthTokenRepository
	sa       repository.SocialAccountRepository
	registry *provider.Registry
	mc       metrics.MetricsCollector
}

func NewTokenMaintenanceJob(
	at repository.AuthTokenRepository,
	sa repository.SocialAccountRepository,
	registry *provider.Registry,
	mc metrics.MetricsCollector) *TokenMaintenanceJob {
	return &TokenMaintenanceJob{
		at:       at,
		sa:       sa,
		registry: registry,
		mc:       mc,
	}
}

func (c *TokenMaintenanceJob) RefreshTokens() {
	ctx := context.Background()

	deadline := time.Now().Add(30 * time.Minute)
	tokens, err := c.at.ListExpiringBefore(ctx, deadline)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, token := range tokens {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(token *models.AuthToken) {
			defer wg.Done()
			defer func() { <-semaphore }()

			c.refreshOne(ctx, token)
		}(token)
	}

	wg.Wait()
}

func (c *TokenMaintenanceJob) refreshOne(ctx context.Context, token *models.AuthToken) {
	account, err := c.sa.GetByID(ctx, token.SocialAccountID)
	if err != nil || account == nil {
		slog.Info("expiring token has no social account", "social_account_id", token.SocialAccountID)
		return
	}

	ap, ok := c.registry.AuthProvider(account.NetworkType)
	if !ok {
		return
	}
	refresher, ok := ap.(provider.TokenRefresher)
	if !ok || token.RefreshToken == nil {
		// No way to renew; the user has to reconnect before expiry.
		if err := c.sa.SetRequiresReauthorization(ctx, account.ID); err != nil {
			slog.Info(err.Error())
		}
		return
	}

	accessToken, newRefresh, expiresAt, err := refresher.RefreshAccessToken(ctx, *token.RefreshToken)
	if err != nil {
		slog.Info("unable to refresh token",
			"network_type", account.NetworkType,
			"social_account_id", account.ID,
			"error", err.Error())
		c.mc.RecordTokenRefreshFailed()
		if err := c.sa.SetRequiresReauthorization(ctx, account.ID); err != nil {
			slog.Info(err.Error())
		}
		return
	}

	if err := c.at.UpdateTokens(ctx, account.ID, accessToken, newRefresh, expiresAt); err != nil {
		slog.Info(err.Error())
		c.mc.RecordTokenRefreshFailed()
		return
	}
	c.mc.RecordTokenRefreshed()
}
