package provider

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/socialorchestrator/api/internal/models"
)

type stubAuthProvider struct {
	network models.NetworkType
}

func (s *stubAuthProvider) NetworkType() models.NetworkType { return s.network }

func (s *stubAuthProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	return "https://example.com/authorize?state=" + state, nil
}

func (s *stubAuthProvider) HandleCallback(ctx context.Context, code, state string) OAuthResult {
	return Failure(s.network, "stub")
}

func (s *stubAuthProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {}

type stubPublisher struct {
	network models.NetworkType
}

func (s *stubPublisher) NetworkType() models.NetworkType { return s.network }

func (s *stubPublisher) Publish(ctx context.Context, in *PublishInput) (PublishResult, error) {
	return PublishResult{IsSuccess: true, ProviderPostID: "stub-id"}, nil
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.RegisterAuthProvider(&stubAuthProvider{network: models.NetworkFacebook})
	r.RegisterPublisher(&stubPublisher{network: models.NetworkFacebook})

	ap, ok := r.AuthProvider(models.NetworkFacebook)
	assert.True(t, ok)
	assert.Equal(t, models.NetworkFacebook, ap.NetworkType())

	pub, ok := r.Publisher(models.NetworkFacebook)
	assert.True(t, ok)
	assert.Equal(t, models.NetworkFacebook, pub.NetworkType())
}

func TestRegistryUnknownNetwork(t *testing.T) {
	r := NewRegistry()
	r.RegisterAuthProvider(&stubAuthProvider{network: models.NetworkFacebook})

	_, ok := r.AuthProvider(models.NetworkTwitter)
	assert.False(t, ok)

	_, ok = r.Publisher(models.NetworkFacebook)
	assert.False(t, ok)
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := &stubAuthProvider{network: models.NetworkLinkedIn}
	second := &stubAuthProvider{network: models.NetworkLinkedIn}
	r.RegisterAuthProvider(first)
	r.RegisterAuthProvider(second)

	ap, ok := r.AuthProvider(models.NetworkLinkedIn)
	assert.True(t, ok)
	assert.Same(t, second, ap)
}

func TestFailureResult(t *testing.T) {
	res := Failure(models.NetworkInstagram, "no code")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, models.NetworkInstagram, res.NetworkType)
	assert.Equal(t, "no code", res.ErrorMessage)
}
