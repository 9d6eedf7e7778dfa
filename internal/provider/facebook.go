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
	FACEBOOK_AUTH_URL  = "https://www.facebook.com/v19.0/dialog/oauth"
	FACEBOOK_TOKEN_URL = "https://graph.facebook.com/v19.0/oauth/access_token"
	FACEBOOK_GRAPH_URL = "https://graph.facebook.com/v19.0"
)

var facebookScopes = []string{"public_profile", "pages_manage_posts", "pages_read_engagement"}

// graphErrorResponse is the error envelope shared by the Facebook and
// Instagram Graph APIs.
type graphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

func graphErrorMessage(body []byte, statusCode int) string {
	var envelope graphErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return fmt.Sprintf("provider returned HTTP %d", statusCode)
}

type FacebookProvider struct {
	app    config.OAuthApp
	client *http.Client
}

func NewFacebookProvider(cfg config.Config) *FacebookProvider {
	return &FacebookProvider{
		app:    cfg.Facebook,
		client: newHTTPClient(),
	}
}

func (p *FacebookProvider) NetworkType() models.NetworkType {
	return models.NetworkFacebook
}

func (p *FacebookProvider) AuthorizationURL(workspaceID, userID uuid.UUID, state string) (string, error) {
	if p.app.ClientID == "" || p.app.RedirectURI == "" {
		return "", models.NewProviderConfig("facebook OAuth is not configured on the server")
	}

	params := url.Values{}
	params.Add("client_id", p.app.ClientID)
	params.Add("redirect_uri", p.app.RedirectURI)
	params.Add("state", state)
	params.Add("response_type", "code")
	params.Add("scope", strings.Join(facebookScopes, ","))

	return fmt.Sprintf("%s?%s", FACEBOOK_AUTH_URL, params.Encode()), nil
}

func (p *FacebookProvider) HandleCallback(ctx context.Context, code, state string) OAuthResult {
	if code == "" {
		return Failure(models.NetworkFacebook, "missing authorization code")
	}
	if p.app.ClientID == "" || p.app.ClientSecret == "" || p.app.RedirectURI == "" {
		return Failure(models.NetworkFacebook, "facebook OAuth is not configured on the server")
	}

	params := url.Values{}
	params.Add("client_id", p.app.ClientID)
	params.Add("client_secret", p.app.ClientSecret)
	params.Add("redirect_uri", p.app.RedirectURI)
	params.Add("code", code)

	tokenBody, statusCode, err := p.get(ctx, FACEBOOK_TOKEN_URL+"?"+params.Encode())
	if err != nil {
		return Failure(models.NetworkFacebook, fmt.Sprintf("error contacting facebook token endpoint: %v", err))
	}
	if statusCode != http.StatusOK {
		return Failure(models.NetworkFacebook,
			fmt.Sprintf("failed to exchange authorization code for access token (HTTP %d)", statusCode))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(tokenBody, &token); err != nil {
		return Failure(models.NetworkFacebook, "unable to parse token response from facebook")
	}
	if token.AccessToken == "" {
		return Failure(models.NetworkFacebook, "token response did not contain an access token")
	}

	meParams := url.Values{}
	meParams.Add("access_token", token.AccessToken)
	meParams.Add("fields", "id,name")

	meBody, statusCode, err := p.get(ctx, FACEBOOK_GRAPH_URL+"/me?"+meParams.Encode())
	if err != nil {
		return Failure(models.NetworkFacebook, fmt.Sprintf("error fetching account information from facebook: %v", err))
	}
	if statusCode != http.StatusOK {
		return Failure(models.NetworkFacebook,
			fmt.Sprintf("failed to fetch account information from facebook (HTTP %d)", statusCode))
	}

	var account struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(meBody, &account); err != nil {
		return Failure(models.NetworkFacebook, "unable to parse account information from facebook")
	}
	if account.ID == "" || account.Name == "" {
		return Failure(models.NetworkFacebook, "account information from facebook is incomplete")
	}

	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		t := time.Now().UTC().Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	return OAuthResult{
		IsSuccess:         true,
		NetworkType:       models.NetworkFacebook,
		ExternalAccountID: account.ID,
		AccountName:       account.Name,
		AccessToken:       token.AccessToken,
		ExpiresAtUtc:      expiresAt,
		Scopes:            facebookScopes,
	}
}

// Revoke deletes the app's permissions for the user, which invalidates the
// issued tokens. Failures are swallowed; local disconnection proceeds.
func (p *FacebookProvider) Revoke(ctx context.Context, accessToken string, refreshToken *string) {
	if accessToken == "" {
		return
	}

	revokeURL := FACEBOOK_GRAPH_URL + "/me/permissions?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, revokeURL, nil)
	if err != nil {
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (p *FacebookProvider) Publish(ctx context.Context, in *PublishInput) (PublishResult, error) {
	var endpoint string
	params := url.Values{}
	params.Add("access_token", in.Token.AccessToken)

	switch in.Variant.Type {
	case models.VariantTypeStatus:
		endpoint = fmt.Sprintf("%s/%s/feed", FACEBOOK_GRAPH_URL, in.Account.ExternalAccountID)
		params.Add("message", in.Variant.Text)
	case models.VariantTypeLink:
		endpoint = fmt.Sprintf("%s/%s/feed", FACEBOOK_GRAPH_URL, in.Account.ExternalAccountID)
		params.Add("message", in.Variant.Text)
		if in.Variant.LinkURL != nil {
			params.Add("link", *in.Variant.LinkURL)
		}
	case models.VariantTypePhoto:
		if in.MediaURL == nil {
			return PublishResult{IsSuccess: false, ErrorMessage: "photo variant has no media asset"}, nil
		}
		endpoint = fmt.Sprintf("%s/%s/photos", FACEBOOK_GRAPH_URL, in.Account.ExternalAccountID)
		params.Add("url", *in.MediaURL)
		params.Add("caption", in.Variant.Text)
	case models.VariantTypeVideo:
		if in.MediaURL == nil {
			return PublishResult{IsSuccess: false, ErrorMessage: "video variant has no media asset"}, nil
		}
		endpoint = fmt.Sprintf("%s/%s/videos", FACEBOOK_GRAPH_URL, in.Account.ExternalAccountID)
		params.Add("file_url", *in.MediaURL)
		params.Add("description", in.Variant.Text)
	default:
		return PublishResult{IsSuccess: false, ErrorMessage: fmt.Sprintf("unsupported variant type %q", in.Variant.Type)}, nil
	}

	body, statusCode, err := p.postForm(ctx, endpoint, params)
	if err != nil {
		return PublishResult{}, err
	}
	if statusCode != http.StatusOK {
		return PublishResult{IsSuccess: false, ErrorMessage: graphErrorMessage(body, statusCode)}, nil
	}

	var created struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return PublishResult{IsSuccess: false, ErrorMessage: "unable to parse publish response from facebook"}, nil
	}

	providerPostID := created.PostID
	if providerPostID == "" {
		providerPostID = created.ID
	}
	if providerPostID == "" {
		return PublishResult{IsSuccess: false, ErrorMessage: "publish response did not contain a post id"}, nil
	}

	return PublishResult{IsSuccess: true, ProviderPostID: providerPostID}, nil
}

func (p *FacebookProvider) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
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

func (p *FacebookProvider) postForm(ctx context.Context, rawURL string, params url.Values) ([]byte, int, error) {
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
