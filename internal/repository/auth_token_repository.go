package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

type AuthTokenRepository interface {
	GetBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error)
	Upsert(ctx context.Context, token *models.AuthToken) error
	RemoveBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) error
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.AuthToken, error)
	UpdateTokens(ctx context.Context, socialAccountID uuid.UUID, accessToken string, refreshToken *string, expiresAtUtc *time.Time) error
}

type authTokenRepository struct {
	db *sql.DB
}

func NewAuthTokenRepository(db *sql.DB) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

const authTokenColumns = `
	id, social_account_id, access_token, refresh_token, expires_at_utc,
	scopes, created_at, updated_at
`

func scanAuthToken(row interface{ Scan(...any) error }) (*models.AuthToken, error) {
	var t models.AuthToken
	err := row.Scan(&t.ID, &t.SocialAccountID, &t.AccessToken, &t.RefreshToken,
		&t.ExpiresAtUtc, &t.Scopes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *authTokenRepository) GetBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) (*models.AuthToken, error) {
	query := `SELECT ` + authTokenColumns + ` FROM auth_tokens WHERE social_account_id = $1`
	t, err := scanAuthToken(r.db.QueryRowContext(ctx, query, socialAccountID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return t, nil
}

// Upsert keeps exactly one token row per social account; reconnecting an
// account replaces the stored credentials in place.
func (r *authTokenRepository) Upsert(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (
			id, social_account_id, access_token, refresh_token,
			expires_at_utc, scopes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (social_account_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at_utc = EXCLUDED.expires_at_utc,
			scopes = EXCLUDED.scopes,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.SocialAccountID, token.AccessToken, token.RefreshToken,
		token.ExpiresAtUtc, token.Scopes)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *authTokenRepository) RemoveBySocialAccountID(ctx context.Context, socialAccountID uuid.UUID) error {
	query := `DELETE FROM auth_tokens WHERE social_account_id = $1`
	_, err := r.db.ExecContext(ctx, query, socialAccountID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *authTokenRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.AuthToken, error) {
	query := `SELECT ` + authTokenColumns + ` FROM auth_tokens WHERE expires_at_utc IS NOT NULL AND expires_at_utc <= $1`
	rows, err := r.db.QueryContext(ctx, query, deadline)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.AuthToken
	for rows.Next() {
		t, err := scanAuthToken(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return tokens, nil
}

func (r *authTokenRepository) UpdateTokens(ctx context.Context, socialAccountID uuid.UUID, accessToken string, refreshToken *string, expiresAtUtc *time.Time) error {
	query := `
		UPDATE auth_tokens
		SET access_token = $2,
			refresh_token = COALESCE($3, refresh_token),
			expires_at_utc = $4,
			updated_at = now()
		WHERE social_account_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, socialAccountID, accessToken, refreshToken, expiresAtUtc)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
