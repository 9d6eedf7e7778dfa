package models

import (
	"time"

	"github.com/google/uuid"
)

type NetworkType string

const (
	NetworkFacebook  NetworkType = "facebook"
	NetworkInstagram NetworkType = "instagram"
	NetworkTwitter   NetworkType = "twitter"
	NetworkLinkedIn  NetworkType = "linkedin"
)

// ParseNetworkType validates a network identifier from the URL path.
func ParseNetworkType(s string) (NetworkType, bool) {
	switch NetworkType(s) {
	case NetworkFacebook, NetworkInstagram, NetworkTwitter, NetworkLinkedIn:
		return NetworkType(s), true
	default:
		return "", false
	}
}

type SocialAccount struct {
	ID                      uuid.UUID   `db:"id" json:"id"`
	WorkspaceID             uuid.UUID   `db:"workspace_id" json:"workspace_id"`
	NetworkType             NetworkType `db:"network_type" json:"network_type"`
	ExternalAccountID       string      `db:"external_account_id" json:"external_account_id"`
	Name                    string      `db:"name" json:"name"`
	Username                *string     `db:"username" json:"username,omitempty"`
	IsActive                bool        `db:"is_active" json:"is_active"`
	RequiresReauthorization bool        `db:"requires_reauthorization" json:"requires_reauthorization"`
	CreatedAt               time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt               *time.Time  `db:"updated_at" json:"updated_at,omitempty"`
}

// AuthToken holds the provider credentials for exactly one social account.
// Tokens are stored as received; encryption at rest is a known deferred risk.
type AuthToken struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	SocialAccountID uuid.UUID  `db:"social_account_id" json:"social_account_id"`
	AccessToken     string     `db:"access_token" json:"-"`
	RefreshToken    *string    `db:"refresh_token" json:"-"`
	ExpiresAtUtc    *time.Time `db:"expires_at_utc" json:"expires_at_utc,omitempty"`
	Scopes          string     `db:"scopes" json:"scopes"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
