package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

// WorkspaceRepository is a read-only view over workspace data owned by the
// external workspace service. Only time zone and membership are consumed.
type WorkspaceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
}

type workspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	query := `SELECT id, name, time_zone, owner_user_id, created_at FROM workspaces WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var w models.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.TimeZone, &w.OwnerUserID, &w.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	memberQuery := `SELECT workspace_id, user_id, role FROM workspace_members WHERE workspace_id = $1`
	rows, err := r.db.QueryContext(ctx, memberQuery, id)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		w.Members = append(w.Members, m)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &w, nil
}

func (r *workspaceRepository) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT 1 FROM workspaces w
		LEFT JOIN workspace_members m ON m.workspace_id = w.id AND m.user_id = $2
		WHERE w.id = $1 AND (w.owner_user_id = $2 OR m.user_id IS NOT NULL)
	`

	var result int
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
