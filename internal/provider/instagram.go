package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	config "github.com/socialorchestrator/api/configs"
	"github.com/socialorchestrator/api/internal/models"
)

const (
	INSTAGRAM_AUTH_URL  = "https://www.instagram.com/oauth/authorize"
	INSTAGRAM_TOKEN_URL = "https://api.instagram.com/oauth/access_token"
	INSTAGRAM_GRAPH_URL = "https://graph.instagram.com"
)

var instagramScopes = []string{"instagram_business_basic", "instagram_business_content_publish"}

type InstagramProvider struct {
	app    config.OAuthApp
	client *http.Client
}

func NewInstagramProvider(cfg config.Config) *InstagramProvider {
	return &InstagramProvider{
		app:    cfg.Instagram,
		client: newHTTPClient(),
	}
}

func (p *InstagramProvider) NetworkType() models.NetworkType {
	return models.NetworkInstagram
}

func (p *InstagramProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	if p.app.ClientID == "" || p.app.RedirectURI == "" {
		return "", models.NewProviderConfig("instagram OAuth is not configured on the server")
	}

	params := url.Values{}
	params.Add("client_id", p.app.ClientID)
	params.Add("redirect_uri", p.app.RedirectURI)
	params.Add("scope", strings.Join(instagramScopes, ","))
	params.Add("response_type", "code")
	params.Add("state", state)

	return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode()), nil
}

func (p *InstagramProvider) HandleCallback(ctx context.Context, code, state string) OAuthResult {
	if code == "" {
		return Failure(models.NetworkInstagram, "missing authorization code")
	}
	if p.app.ClientID == "" || p.app.ClientSecret == "" || p.app.RedirectURI == "" {
		return Failure(models.NetworkInstagram, "instagram OAuth is not configured on the server")
	}

	data := url.Values{}
	data.Set("client_id", p.app.ClientID)
	data.Set("client_secret", p.app.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", p.app.RedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, INSTAGRAM_TOKEN_URL, strings.NewReader(data.Encode()))
	if err != nil {
		return Failure(models.NetworkInstagram, fmt.Sprintf("error building token request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(models.NetworkInstagram, fmt.Sprintf("error contacting instagram token endpoint: %v", err))
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return Failure(models.NetworkInstagram, "unable to read token response from instagram")
	}
	if resp.StatusCode != http.StatusOK {
		return Failure(models.NetworkInstagram,
			fmt.Sprintf("failed to exchange authorization code for access token (HTTP %d)", resp.StatusCode))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		UserID      int64  `json:"user_id"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return Failure(models.NetworkInstagram, "unable to parse token response from instagram")
	}
	if token.AccessToken == "" {
		return Failure(models.NetworkInstagram, "token response did not contain an access token")
	}

	// Trade the short-lived token for a long-lived one so scheduled posts
	// survive past the first hour.
	longLived, expiresAt := p.exchangeLongLivedToken(ctx, token.AccessToken)

	meParams := url.Values{}
	meParams.Add("fields", "id,username,name")
	meParams.Add("access_token", longLived)

	meReq, err := http.NewRequestWithContext(ctx, http.MethodGet, INSTAGRAM_GRAPH_URL+"/me?"+meParams.Encode(), nil)
	if err != nil {
		return Failure(models.NetworkInstagram, fmt.Sprintf("error building account request: %v", err))
	}
	meResp, err := p.client.Do(meReq)
	if err != nil {
		return Failure(models.NetworkInstagram, fmt.Sprintf("error fetching account information from instagram: %v", err))
	}
	meBody, readErr := io.ReadAll(meResp.Body)
	meResp.Body.Close()
	if readErr != nil {
		return Failure(models.NetworkInstagram, "unable to read account response from instagram")
	}
	if meResp.StatusCode != http.StatusOK {
		return Failure(models.NetworkInstagram,
			fmt.Sprintf("failed to fetch account information from instagram (HTTP %d)", meResp.StatusCode))
	}

	var account struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(meBody, &account); err != nil {
		return Failure(models.NetworkInstagram, "unable to parse account information from instagram")
	}
	if account.ID == "" {
		return Failure(models.NetworkInstagram, "account information from instagram is incomplete")
	}

	name := account.Name
	if name == "" {
		name = account.Username
	}
	var username *string
	if account.Username != "" {
		username = &account.Username
	}

	return OAuthResult{
		IsSuccess:         true,
		NetworkType:       models.NetworkInstagram,
		ExternalAccountID: account.ID,
		AccountName:       name,
		AccountUsername:   username,
		AccessToken:       longLived,
		ExpiresAtUtc:      expiresAt,
		Scopes:            instagramScopes,
	}
}

// exchangeLongLivedToken upgrades a short-lived token. On any failure the
// short-lived token is kept so the connect flow still completes.
func (p *InstagramProvider) exchangeLongLivedToken(ctx context.Context, shortLived string) (string, *time.Time) {
	params := url.Values{}
	params.Add("grant_type", "ig_exchange_token")
	params.Add("client_secret", p.app.ClientSecret)
	params.Add("access_token", shortLived)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, INSTAGRAM_GRAPH_URL+"/access_token?"+params.Encode(), nil)
	if err != nil {
		return shortLived, nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return shortLived, nil
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil || resp.StatusCode != http.StatusOK {
		return shortLived, nil
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return shortLived, nil
	}

	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		t := time.Now().UTC().Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	return token.AccessToken, expiresAt
}

// Revoke has no supported endpoint on the Instagram API; tokens lapse when
// the user removes the app. Nothing to do.
func (p *InstagramProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {
}

// RefreshAccessToken renews a long-lived token before it expires.
func (p *InstagramProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *string, *time.Time, error) {
	params := url.Values{}
	params.Add("grant_type", "ig_refresh_token")
	params.Add("access_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, INSTAGRAM_GRAPH_URL+"/refresh_access_token?"+params.Encode(), nil)
	if err != nil {
		return "", nil, nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, nil, fmt.Errorf("instagram token refresh failed (HTTP %d)", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", nil, nil, fmt.Errorf("unable to parse refresh response: %w", err)
	}
	if token.AccessToken == "" {
		return "", nil, nil, fmt.Errorf("refresh response did not contain an access token")
	}

	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		t := time.Now().UTC().Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	return token.AccessToken, &token.AccessToken, expiresAt, nil
}

// Publish runs Instagram's two-step container flow: create a media
// container, then publish it.
func (p *InstagramProvider) Publish(ctx context.Context, in *PublishInput) (PublishResult, error) {
	if in.MediaURL == nil {
		// Instagram has no text-only posts.
		return PublishResult{IsSuccess: false, ErrorMessage: "instagram variants require a media asset"}, nil
	}

	containerParams := url.Values{}
	containerParams.Add("access_token", in.Token.AccessToken)
	containerParams.Add("caption", in.Variant.Text)
	switch in.Variant.Type {
	case models.VariantTypeVideo:
		containerParams.Add("media_type", "REELS")
		containerParams.Add("video_url", *in.MediaURL)
	default:
		containerParams.Add("image_url", *in.MediaURL)
	}

	containerEndpoint := fmt.Sprintf("%s/%s/media", INSTAGRAM_GRAPH_URL, in.Account.ExternalAccountID)
	body, statusCode, err := p.postForm(ctx, containerEndpoint, containerParams)
	if err != nil {
		return PublishResult{}, err
	}
	if statusCode != http.StatusOK {
		return PublishResult{IsSuccess: false, ErrorMessage: graphErrorMessage(body, statusCode)}, nil
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &container); err != nil || container.ID == "" {
		return PublishResult{IsSuccess: false, ErrorMessage: "unable to parse media container response from instagram"}, nil
	}

	publishParams := url.Values{}
	publishParams.Add("access_token", in.Token.AccessToken)
	publishParams.Add("creation_id", container.ID)

	publishEndpoint := fmt.Sprintf("%s/%s/media_publish", INSTAGRAM_GRAPH_URL, in.Account.ExternalAccountID)
	body, statusCode, err = p.postForm(ctx, publishEndpoint, publishParams)
	if err != nil {
		return PublishResult{}, err
	}
	if statusCode != http.StatusOK {
		return PublishResult{IsSuccess: false, ErrorMessage: graphErrorMessage(body, statusCode)}, nil
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &published); err != nil || published.ID == "" {
		return PublishResult{IsSuccess: false, ErrorMessage: "publish response did not contain a post id"}, nil
	}

	return PublishResult{IsSuccess: true, ProviderPostID: published.ID}, nil
}

func (p *InstagramProvider) postForm(ctx context.Context, rawURL string, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
