package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

type SocialAccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error)
	GetByWorkspace(ctx context.Context, workspaceID, accountID uuid.UUID) (*models.SocialAccount, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.SocialAccount, error)
	CheckByWorkspace(ctx context.Context, accountID, workspaceID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	SetRequiresReauthorization(ctx context.Context, id uuid.UUID) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `
	id, workspace_id, network_type, external_account_id, name, username,
	is_active, requires_reauthorization, created_at, updated_at
`

func scanSocialAccount(row interface{ Scan(...any) error }) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.WorkspaceID, &sa.NetworkType, &sa.ExternalAccountID,
		&sa.Name, &sa.Username, &sa.IsActive, &sa.RequiresReauthorization,
		&sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) GetByWorkspace(ctx context.Context, workspaceID, accountID uuid.UUID) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1 AND workspace_id = $2`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, accountID, workspaceID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE workspace_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return accounts, nil
}

func (r *socialAccountRepository) CheckByWorkspace(ctx context.Context, accountID, workspaceID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM social_accounts WHERE id = $1 AND workspace_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, workspaceID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// Upsert inserts or refreshes the account identified by
// (workspace_id, network_type, external_account_id). The unique constraint
// makes concurrent connects for the same external account converge on a
// single row; the last writer's name and username win.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error) {
	query := `
		INSERT INTO social_accounts (
			id, workspace_id, network_type, external_account_id, name,
			username, is_active, requires_reauthorization, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, FALSE, now())
		ON CONFLICT ON CONSTRAINT social_accounts_identity_key
		DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			is_active = TRUE,
			requires_reauthorization = FALSE,
			updated_at = now()
		RETURNING ` + socialAccountColumns

	row := r.db.QueryRowContext(ctx, query,
		sa.ID, sa.WorkspaceID, sa.NetworkType, sa.ExternalAccountID, sa.Name, sa.Username)
	saved, err := scanSocialAccount(row)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return saved, nil
}

func (r *socialAccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE social_accounts
		SET is_active = FALSE, requires_reauthorization = TRUE, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) SetRequiresReauthorization(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE social_accounts SET requires_reauthorization = TRUE, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
