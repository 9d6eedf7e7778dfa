package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/repository"
)

// Media larger than this is rejected before it reaches storage.
const maxAssetSize = 100 * 1024 * 1024

type AssetService interface {
	Upload(ctx context.Context, workspaceID, userID uuid.UUID, fh *multipart.FileHeader) (*models.MediaAsset, error)
}

type assetService struct {
	wr      repository.WorkspaceRepository
	ma      repository.MediaAssetRepository
	storage *StorageService
}

func NewAssetService(
	wr repository.WorkspaceRepository,
	ma repository.MediaAssetRepository,
	storage *StorageService) AssetService {
	return &assetService{
		wr:      wr,
		ma:      ma,
		storage: storage,
	}
}

func (s *assetService) Upload(ctx context.Context, workspaceID, userID uuid.UUID, fh *multipart.FileHeader) (*models.MediaAsset, error) {
	if fh == nil {
		return nil, models.NewValidation("no file provided")
	}
	if fh.Size > maxAssetSize {
		return nil, models.NewValidation("file exceeds the maximum allowed size")
	}

	isMember, err := s.wr.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.NewForbidden("user is not a member of this workspace")
	}

	file, err := fh.Open()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	// Sniff the real content type; the client-supplied header is ignored.
	kind, err := filetype.Match(buf)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if !filetype.IsImage(buf) && !filetype.IsVideo(buf) {
		return nil, models.NewValidation("only image and video uploads are supported")
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	key := fmt.Sprintf("%s/%s.%s", workspaceID, id, kind.Extension)

	fileURL, err := s.storage.Upload(ctx, key, buf, kind.MIME.Value)
	if err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		FileName:    fh.Filename,
		FileType:    kind.MIME.Value,
		FileSize:    fh.Size,
		FileURL:     fileURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.ma.Create(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}
