package transfer

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledAtLayout is the wall-clock layout clients submit. The value is
// interpreted in the workspace's time zone, not UTC.
const ScheduledAtLayout = "2006-01-02T15:04"

type CreatePostRequest struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

type CreateVariantRequest struct {
	SocialAccountID uuid.UUID  `json:"social_account_id"`
	Type            string     `json:"type"`
	Text            string     `json:"text"`
	LinkURL         *string    `json:"link_url"`
	MediaAssetID    *uuid.UUID `json:"media_asset_id"`
	ScheduledAt     string     `json:"scheduled_at"`
}

type CreatePostPayload struct {
	Post     CreatePostRequest      `json:"post"`
	Variants []CreateVariantRequest `json:"variants"`
}

type VariantSummary struct {
	ID               uuid.UUID  `json:"id"`
	SocialAccountID  uuid.UUID  `json:"social_account_id"`
	Type             string     `json:"type"`
	Text             string     `json:"text"`
	State            string     `json:"state"`
	ScheduledAtUtc   *time.Time `json:"scheduled_at_utc"`
	PublishedAtUtc   *time.Time `json:"published_at_utc"`
	LastErrorMessage *string    `json:"last_error_message"`
}

type PostDetail struct {
	ID              uuid.UUID        `json:"id"`
	WorkspaceID     uuid.UUID        `json:"workspace_id"`
	Title           *string          `json:"title"`
	Notes           *string          `json:"notes"`
	CreatedByUserID uuid.UUID        `json:"created_by_user_id"`
	CreatedAt       time.Time        `json:"created_at"`
	Variants        []VariantSummary `json:"variants"`
}

type PostListItem struct {
	ID             uuid.UUID `json:"id"`
	Title          *string   `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	VariantCount   int       `json:"variant_count"`
	PublishedCount int       `json:"published_count"`
	FailedCount    int       `json:"failed_count"`
	ScheduledCount int       `json:"scheduled_count"`
}

type ListPostsFilter struct {
	WorkspaceID     uuid.UUID
	PageNumber      int
	PageSize        int
	State           *string
	SocialAccountID *uuid.UUID
	FromUtc         *time.Time
	ToUtc           *time.Time
}

type PagedPosts struct {
	Items      []*PostListItem `json:"items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
	TotalCount int             `json:"total_count"`
}
