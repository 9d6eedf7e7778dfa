package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

type PostVariantRepository interface {
	Create(ctx context.Context, tx *sql.Tx, variant *models.PostVariant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PostVariant, error)
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostVariant, error)
	MarkPublished(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (bool, error)
}

type postVariantRepository struct {
	db *sql.DB
}

func NewPostVariantRepository(db *sql.DB) PostVariantRepository {
	return &postVariantRepository{db: db}
}

const postVariantColumns = `
	id, post_id, social_account_id, type, text, link_url, media_asset_id,
	state, scheduled_at_utc, published_at_utc, provider_post_id,
	last_error_message, created_at, updated_at
`

func scanPostVariant(row interface{ Scan(...any) error }) (*models.PostVariant, error) {
	var v models.PostVariant
	err := row.Scan(&v.ID, &v.PostID, &v.SocialAccountID, &v.Type, &v.Text,
		&v.LinkURL, &v.MediaAssetID, &v.State, &v.ScheduledAtUtc, &v.PublishedAtUtc,
		&v.ProviderPostID, &v.LastErrorMessage, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postVariantRepository) Create(ctx context.Context, tx *sql.Tx, variant *models.PostVariant) error {
	query := `
		INSERT INTO post_variants (
			id, post_id, social_account_id, type, text, link_url,
			media_asset_id, state, scheduled_at_utc, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, variant.ID, variant.PostID, variant.SocialAccountID,
			variant.Type, variant.Text, variant.LinkURL, variant.MediaAssetID,
			variant.State, variant.ScheduledAtUtc, variant.CreatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, variant.ID, variant.PostID, variant.SocialAccountID,
			variant.Type, variant.Text, variant.LinkURL, variant.MediaAssetID,
			variant.State, variant.ScheduledAtUtc, variant.CreatedAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *postVariantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PostVariant, error) {
	query := `SELECT ` + postVariantColumns + ` FROM post_variants WHERE id = $1`
	v, err := scanPostVariant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return v, nil
}

func (r *postVariantRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostVariant, error) {
	query := `
		SELECT ` + postVariantColumns + `
		FROM post_variants
		WHERE post_id = $1
		ORDER BY COALESCE(scheduled_at_utc, created_at)
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var variants []*models.PostVariant
	for rows.Next() {
		v, err := scanPostVariant(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return variants, nil
}

// MarkPublished performs the scheduled -> published transition as a single
// conditional update, so a redelivered job observes zero affected rows
// instead of publishing twice.
func (r *postVariantRepository) MarkPublished(ctx context.Context, id uuid.UUID, providerPostID string, publishedAtUtc time.Time) (bool, error) {
	query := `
		UPDATE post_variants
		SET state = 'published',
			published_at_utc = $2,
			provider_post_id = $3,
			last_error_message = NULL,
			updated_at = now()
		WHERE id = $1 AND state = 'scheduled'
	`
	result, err := r.db.ExecContext(ctx, query, id, publishedAtUtc, providerPostID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// MarkFailed performs the scheduled -> failed transition under the same
// conditional guard as MarkPublished.
func (r *postVariantRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (bool, error) {
	query := `
		UPDATE post_variants
		SET state = 'failed',
			last_error_message = $2,
			updated_at = now()
		WHERE id = $1 AND state = 'scheduled'
	`
	result, err := r.db.ExecContext(ctx, query, id, errorMessage)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}
