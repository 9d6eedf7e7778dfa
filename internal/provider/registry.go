// Package provider holds the per-network capability implementations and the
// registry that dispatches on network type. Adding a network means
// registering a new AuthProvider/Publisher pair; nothing else changes.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

// OAuthResult is the outcome of handling a provider callback. Every failure
// path yields a result with IsSuccess=false rather than an error, so the
// callback handler can render a reason to the user.
type OAuthResult struct {
	IsSuccess         bool
	ErrorMessage      string
	NetworkType       models.NetworkType
	ExternalAccountID string
	AccountName       string
	AccountUsername   *string
	AccessToken       string
	RefreshToken      *string
	ExpiresAtUtc      *time.Time
	Scopes            []string
}

func Failure(network models.NetworkType, message string) OAuthResult {
	return OAuthResult{
		IsSuccess:    false,
		ErrorMessage: message,
		NetworkType:  network,
	}
}

// PublishInput carries everything a publisher needs for one attempt. The
// media URL, when present, is pre-resolved by the caller so publishers never
// touch storage.
type PublishInput struct {
	Variant  *models.PostVariant
	Account  *models.SocialAccount
	Token    *models.AuthToken
	MediaURL *string
}

// PublishResult reports a provider-confirmed outcome. A result with
// IsSuccess=false is a business rejection and is terminal; transport-level
// problems are returned as errors from Publish instead and may be retried.
type PublishResult struct {
	IsSuccess      bool
	ProviderPostID string
	ErrorMessage   string
}

type AuthProvider interface {
	NetworkType() models.NetworkType

	// AuthorizationURL builds the provider consent URL carrying state.
	// It fails when the provider app is not configured.
	AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error)

	// HandleCallback exchanges the authorization code for tokens and
	// fetches the minimal account identity.
	HandleCallback(ctx context.Context, code, state string) OAuthResult

	// Revoke best-effort invalidates the credentials upstream. Errors are
	// swallowed; local disconnection never depends on provider uptime.
	Revoke(ctx context.Context, accessToken string, refreshToken *string)
}

type Publisher interface {
	NetworkType() models.NetworkType
	Publish(ctx context.Context, in *PublishInput) (PublishResult, error)
}

// TokenRefresher is implemented by auth providers whose network supports
// refresh-token renewal.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken *string, expiresAtUtc *time.Time, err error)
}

// Registry maps each network type to at most one implementation per
// capability. Registration happens at startup; lookups afterwards are
// read-only and safe for concurrent use.
type Registry struct {
	authProviders map[models.NetworkType]AuthProvider
	publishers    map[models.NetworkType]Publisher
}

func NewRegistry() *Registry {
	return &Registry{
		authProviders: make(map[models.NetworkType]AuthProvider),
		publishers:    make(map[models.NetworkType]Publisher),
	}
}

func (r *Registry) RegisterAuthProvider(p AuthProvider) {
	r.authProviders[p.NetworkType()] = p
}

func (r *Registry) RegisterPublisher(p Publisher) {
	r.publishers[p.NetworkType()] = p
}

func (r *Registry) AuthProvider(network models.NetworkType) (AuthProvider, bool) {
	p, ok := r.authProviders[network]
	return p, ok
}

func (r *Registry) Publisher(network models.NetworkType) (Publisher, bool) {
	p, ok := r.publishers[network]
	return p, ok
}

// newHTTPClient is the shared client shape for provider calls. Cancellation
// flows through request contexts; the timeout bounds a single attempt.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
