package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, ma *models.MediaAsset) error
	GetByID(ctx context.Context, assetID uuid.UUID) (*models.MediaAsset, error)
	CheckByWorkspace(ctx context.Context, assetID, workspaceID uuid.UUID) (bool, error)
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, ma *models.MediaAsset) error {
	query := `
		INSERT INTO media_assets (id, workspace_id, file_name, file_type, file_size, file_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`
	_, err := r.db.ExecContext(ctx, query,
		ma.ID, ma.WorkspaceID, ma.FileName, ma.FileType, ma.FileSize, ma.FileURL)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *mediaAssetRepository) GetByID(ctx context.Context, assetID uuid.UUID) (*models.MediaAsset, error) {
	query := `
		SELECT id, workspace_id, file_name, file_type, file_size, file_url, created_at
		FROM media_assets
		WHERE id = $1
	`

	var ma models.MediaAsset
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(
		&ma.ID, &ma.WorkspaceID, &ma.FileName, &ma.FileType, &ma.FileSize, &ma.FileURL, &ma.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &ma, nil
}

func (r *mediaAssetRepository) CheckByWorkspace(ctx context.Context, assetID, workspaceID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM media_assets WHERE id = $1 AND workspace_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, assetID, workspaceID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
