package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	config "github.com/socialorchestrator/api/configs"
	"github.com/socialorchestrator/api/internal/models"
)

const (
	LINKEDIN_API_URL    = "https://api.linkedin.com/v2"
	LINKEDIN_REVOKE_URL = "https://www.linkedin.com/oauth/v2/revoke"
)

var linkedinScopes = []string{"openid", "profile", "w_member_social"}

type LinkedInProvider struct {
	conf   *oauth2.Config
	client *http.Client
}

func NewLinkedInProvider(cfg config.Config) *LinkedInProvider {
	return &LinkedInProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.LinkedIn.ClientID,
			ClientSecret: cfg.LinkedIn.ClientSecret,
			RedirectURL:  cfg.LinkedIn.RedirectURI,
			Scopes:       linkedinScopes,
			Endpoint:     linkedin.Endpoint,
		},
		client: newHTTPClient(),
	}
}

func (p *LinkedInProvider) NetworkType() models.NetworkType {
	return models.NetworkLinkedIn
}

func (p *LinkedInProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	if p.conf.ClientID == "" || p.conf.RedirectURL == "" {
		return "", models.NewProviderConfig("linkedin OAuth is not configured on the server")
	}
	return p.conf.AuthCodeURL(state), nil
}

func (p *LinkedInProvider) HandleCallback(ctx context.Context, code, state string) OAuthResult {
	if code == "" {
		return Failure(models.NetworkLinkedIn, "missing authorization code")
	}
	if p.conf.ClientID == "" || p.conf.ClientSecret == "" || p.conf.RedirectURL == "" {
		return Failure(models.NetworkLinkedIn, "linkedin OAuth is not configured on the server")
	}

	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Failure(models.NetworkLinkedIn, fmt.Sprintf("failed to exchange authorization code: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, LINKEDIN_API_URL+"/userinfo", nil)
	if err != nil {
		return Failure(models.NetworkLinkedIn, fmt.Sprintf("error building account request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(models.NetworkLinkedIn, fmt.Sprintf("error fetching account information from linkedin: %v", err))
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return Failure(models.NetworkLinkedIn, "unable to read account response from linkedin")
	}
	if resp.StatusCode != http.StatusOK {
		return Failure(models.NetworkLinkedIn,
			fmt.Sprintf("failed to fetch account information from linkedin (HTTP %d)", resp.StatusCode))
	}

	var account struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return Failure(models.NetworkLinkedIn, "unable to parse account information from linkedin")
	}
	if account.Sub == "" || account.Name == "" {
		return Failure(models.NetworkLinkedIn, "account information from linkedin is incomplete")
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
		NetworkType:       models.NetworkLinkedIn,
		ExternalAccountID: account.Sub,
		AccountName:       account.Name,
		AccessToken:       token.AccessToken,
		RefreshToken:      refreshToken,
		ExpiresAtUtc:      expiresAt,
		Scopes:            linkedinScopes,
	}
}

func (p *LinkedInProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {
	if accessToken == "" {
		return
	}

	data := url.Values{}
	data.Set("client_id", p.conf.ClientID)
	data.Set("client_secret", p.conf.ClientSecret)
	data.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, LINKEDIN_REVOKE_URL, strings.NewReader(data.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (p *LinkedInProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *string, *time.Time, error) {
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

func (p *LinkedInProvider) Publish(ctx context.Context, in *PublishInput) (PublishResult, error) {
	shareMediaCategory := "NONE"
	var media []map[string]any
	if in.Variant.Type == models.VariantTypeLink && in.Variant.LinkURL != nil {
		shareMediaCategory = "ARTICLE"
		media = append(media, map[string]any{
			"status":      "READY",
			"originalUrl": *in.Variant.LinkURL,
		})
	}

	shareContent := map[string]any{
		"shareCommentary":    map[string]any{"text": in.Variant.Text},
		"shareMediaCategory": shareMediaCategory,
	}
	if media != nil {
		shareContent["media"] = media
	}

	payload := map[string]any{
		"author":         "urn:li:person:" + in.Account.ExternalAccountID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, LINKEDIN_API_URL+"/ugcPosts", bytes.NewReader(encoded))
	if err != nil {
		return PublishResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+in.Token.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return PublishResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PublishResult{}, err
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &failure); err == nil && failure.Message != "" {
			return PublishResult{IsSuccess: false, ErrorMessage: failure.Message}, nil
		}
		return PublishResult{IsSuccess: false, ErrorMessage: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}, nil
	}

	providerPostID := resp.Header.Get("X-RestLi-Id")
	if providerPostID == "" {
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &created); err == nil {
			providerPostID = created.ID
		}
	}
	if providerPostID == "" {
		return PublishResult{IsSuccess: false, ErrorMessage: "publish response did not contain a post id"}, nil
	}

	return PublishResult{IsSuccess: true, ProviderPostID: providerPostID}, nil
}
