package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID              uuid.UUID `db:"id" json:"id"`
	WorkspaceID     uuid.UUID `db:"workspace_id" json:"workspace_id"`
	Title           *string   `db:"title" json:"title,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedByUserID uuid.UUID `db:"created_by_user_id" json:"created_by_user_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type PostVariant struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PostID           uuid.UUID  `db:"post_id" json:"post_id"`
	SocialAccountID  uuid.UUID  `db:"social_account_id" json:"social_account_id"`
	Type             string     `db:"type" json:"type"`
	Text             string     `db:"text" json:"text"`
	LinkURL          *string    `db:"link_url" json:"link_url,omitempty"`
	MediaAssetID     *uuid.UUID `db:"media_asset_id" json:"media_asset_id,omitempty"`
	State            string     `db:"state" json:"state"`
	ScheduledAtUtc   *time.Time `db:"scheduled_at_utc" json:"scheduled_at_utc,omitempty"`
	PublishedAtUtc   *time.Time `db:"published_at_utc" json:"published_at_utc,omitempty"`
	ProviderPostID   *string    `db:"provider_post_id" json:"provider_post_id,omitempty"`
	LastErrorMessage *string    `db:"last_error_message" json:"last_error_message,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type MediaAsset struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id" json:"workspace_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	FileURL     string    `db:"file_url" json:"file_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Variant publication states. Cancelled is modeled but no current
// operation drives a variant into it.
const (
	VariantStateDraft     = "draft"
	VariantStateScheduled = "scheduled"
	VariantStatePublished = "published"
	VariantStateFailed    = "failed"
	VariantStateCancelled = "cancelled"
)

// Variant content types.
const (
	VariantTypeStatus = "status"
	VariantTypeLink   = "link"
	VariantTypePhoto  = "photo"
	VariantTypeVideo  = "video"
)

// ParseVariantType validates a variant type supplied by the client.
func ParseVariantType(s string) (string, bool) {
	switch s {
	case VariantTypeStatus, VariantTypeLink, VariantTypePhoto, VariantTypeVideo:
		return s, true
	default:
		return "", false
	}
}
