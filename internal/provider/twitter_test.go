package provider

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/socialorchestrator/api/configs"
)

func newTestTwitterProvider() *TwitterProvider {
	return NewTwitterProvider(config.Config{
		Twitter: config.OAuthApp{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURI:  "https://app.example.com/oauth/twitter/callback",
		},
	})
}

func codeChallenge(t *testing.T, p *TwitterProvider, state string) string {
	t.Helper()

	raw, err := p.AuthorizationURL(uuid.New(), uuid.New(), state)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
	return u.Query().Get("code_challenge")
}

func TestTwitterAuthorizationUsesPerFlowVerifier(t *testing.T) {
	p := newTestTwitterProvider()

	first := codeChallenge(t, p, "state-one")
	second := codeChallenge(t, p, "state-two")

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	// The same state must always derive the same challenge; the callback
	// leg may land on a different instance than the authorize leg.
	assert.Equal(t, first, codeChallenge(t, p, "state-one"))
	assert.Equal(t, first, codeChallenge(t, newTestTwitterProvider(), "state-one"))
}

func TestTwitterChallengeMatchesDerivedVerifier(t *testing.T) {
	p := newTestTwitterProvider()
	state := "state-value"

	sum := sha256.Sum256([]byte(p.pkceVerifier(state)))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.Equal(t, want, codeChallenge(t, p, state))
}
