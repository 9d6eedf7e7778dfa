package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	config "github.com/socialorchestrator/api/configs"
	"github.com/socialorchestrator/api/internal/models"
)

const (
	TWITTER_AUTH_URL   = "https://twitter.com/i/oauth2/authorize"
	TWITTER_TOKEN_URL  = "https://api.twitter.com/2/oauth2/token"
	TWITTER_REVOKE_URL = "https://api.twitter.com/2/oauth2/revoke"
	TWITTER_API_URL    = "https://api.twitter.com/2"
)

var twitterScopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

type TwitterProvider struct {
	conf   *oauth2.Config
	client *http.Client
}

func NewTwitterProvider(cfg config.Config) *TwitterProvider {
	return &TwitterProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.Twitter.ClientID,
			ClientSecret: cfg.Twitter.ClientSecret,
			RedirectURL:  cfg.Twitter.RedirectURI,
			Scopes:       twitterScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   TWITTER_AUTH_URL,
				TokenURL:  TWITTER_TOKEN_URL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		client: newHTTPClient(),
	}
}

// pkceVerifier derives the code verifier for one flow from its state value.
// The state is unique per flow, and both legs of a flow recompute the same
// verifier on any instance. The verifier itself never travels through the
// front channel.
func (p *TwitterProvider) pkceVerifier(state string) string {
	mac := hmac.New(sha256.New, []byte(p.conf.ClientSecret))
	mac.Write([]byte(state))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (p *TwitterProvider) NetworkType() models.NetworkType {
	return models.NetworkTwitter
}

func (p *TwitterProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	if p.conf.ClientID == "" || p.conf.RedirectURL == "" {
		return "", models.NewProviderConfig("twitter OAuth is not configured on the server")
	}
	return p.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(p.pkceVerifier(state))), nil
}

func (p *TwitterProvider) HandleCallback(ctx context.Context, code, state string) OAuthResult {
	if code == "" {
		return Failure(models.NetworkTwitter, "missing authorization code")
	}
	if p.conf.ClientID == "" || p.conf.ClientSecret == "" || p.conf.RedirectURL == "" {
		return Failure(models.NetworkTwitter, "twitter OAuth is not configured on the server")
	}

	token, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(p.pkceVerifier(state)))
	if err != nil {
		return Failure(models.NetworkTwitter, fmt.Sprintf("failed to exchange authorization code: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TWITTER_API_URL+"/users/me", nil)
	if err != nil {
		return Failure(models.NetworkTwitter, fmt.Sprintf("error building account request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(models.NetworkTwitter, fmt.Sprintf("error fetching account information from twitter: %v", err))
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return Failure(models.NetworkTwitter, "unable to read account response from twitter")
	}
	if resp.StatusCode != http.StatusOK {
		return Failure(models.NetworkTwitter,
			fmt.Sprintf("failed to fetch account information from twitter (HTTP %d)", resp.StatusCode))
	}

	var account struct {
		Data struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return Failure(models.NetworkTwitter, "unable to parse account information from twitter")
	}
	if account.Data.ID == "" || account.Data.Name == "" {
		return Failure(models.NetworkTwitter, "account information from twitter is incomplete")
	}

	var username *string
	if account.Data.Username != "" {
		username = &account.Data.Username
	}
	var refreshToken *string
	if token.RefreshToken != "" {
		refreshToken = &token.RefreshToken
	}
	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		t := token.Expiry.UTC()
		expiresAt = &t
	}

	return OAuthResult{
		IsSuccess:         true,
		NetworkType:       models.NetworkTwitter,
		ExternalAccountID: account.Data.ID,
		AccountName:       account.Data.Name,
		AccountUsername:   username,
		AccessToken:       token.AccessToken,
		RefreshToken:      refreshToken,
		ExpiresAtUtc:      expiresAt,
		Scopes:            twitterScopes,
	}
}

func (p *TwitterProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {
	if accessToken == "" {
		return
	}

	data := url.Values{}
	data.Set("token", accessToken)
	data.Set("token_type_hint", "access_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TWITTER_REVOKE_URL, strings.NewReader(data.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.conf.ClientID, p.conf.ClientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (p *TwitterProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *string, *time.Time, error) {
	source := p.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", nil, nil, err
	}

	var newRefresh *string
	if token.RefreshToken != "" {
		newRefresh = &token.RefreshToken
	}
	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		t := token.Expiry.UTC()
		expiresAt = &t
	}
	return token.AccessToken, newRefresh, expiresAt, nil
}

func (p *TwitterProvider) Publish(ctx context.Context, in *PublishInput) (PublishResult, error) {
	text := in.Variant.Text
	if in.Variant.Type == models.VariantTypeLink && in.Variant.LinkURL != nil {
		text = text + " " + *in.Variant.LinkURL
	}

	payload := map[string]any{"text": text}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TWITTER_API_URL+"/tweets", bytes.NewReader(encoded))
	if err != nil {
		return PublishResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+in.Token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return PublishResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PublishResult{}, err
	}

	if resp.StatusCode != http.StatusCreated {
		var failure struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		if err := json.Unmarshal(body, &failure); err == nil {
			if failure.Detail != "" {
				return PublishResult{IsSuccess: false, ErrorMessage: failure.Detail}, nil
			}
			if failure.Title != "" {
				return PublishResult{IsSuccess: false, ErrorMessage: failure.Title}, nil
			}
		}
		return PublishResult{IsSuccess: false, ErrorMessage: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}, nil
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.Data.ID == "" {
		return PublishResult{IsSuccess: false, ErrorMessage: "publish response did not contain a post id"}, nil
	}

	return PublishResult{IsSuccess: true, ProviderPostID: created.Data.ID}, nil
}
