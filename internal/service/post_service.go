package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/queue"
	"github.com/socialorchestrator/api/internal/repository"
	"github.com/socialorchestrator/api/internal/timezone"
	"github.com/socialorchestrator/api/internal/transfer"
)

type PostService interface {
	CreatePostWithVariants(ctx context.Context, workspaceID, userID uuid.UUID, payload *transfer.CreatePostPayload) (*transfer.PostDetail, error)
	GetPost(ctx context.Context, workspaceID, userID, postID uuid.UUID) (*transfer.PostDetail, error)
	ListPosts(ctx context.Context, userID uuid.UUID, filter *transfer.ListPostsFilter) (*transfer.PagedPosts, error)
}

type postService struct {
	db        *sql.DB
	wr        repository.WorkspaceRepository
	pr        repository.PostRepository
	pv        repository.PostVariantRepository
	sa        repository.SocialAccountRepository
	ma        repository.MediaAssetRepository
	tz        timezone.Resolver
	scheduler queue.Scheduler
	now       func() time.Time
}

func NewPostService(
	db *sql.DB,
	wr repository.WorkspaceRepository,
	pr repository.PostRepository,
	pv repository.PostVariantRepository,
	sa repository.SocialAccountRepository,
	ma repository.MediaAssetRepository,
	tz timezone.Resolver,
	scheduler queue.Scheduler) PostService {
	return &postService{
		db:        db,
		wr:        wr,
		pr:        pr,
		pv:        pv,
		sa:        sa,
		ma:        ma,
		tz:        tz,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *postService) CreatePostWithVariants(ctx context.Context, workspaceID, userID uuid.UUID, payload *transfer.CreatePostPayload) (*transfer.PostDetail, error) {
	if payload == nil || len(payload.Variants) == 0 {
		return nil, models.NewValidation("a post requires at least one variant")
	}

	workspace, err := s.wr.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, models.NewNotFound("workspace not found")
	}
	if !workspace.HasMember(userID) {
		return nil, models.NewForbidden("user is not a member of this workspace")
	}

	loc, err := s.tz.Resolve(workspace.TimeZone)
	if err != nil {
		// Unknown zone identifiers degrade to UTC rather than blocking
		// the whole post.
		slog.Warn("workspace time zone could not be resolved, falling back to UTC",
			"workspace_id", workspaceID, "time_zone", workspace.TimeZone)
		loc = time.UTC
	}

	now := s.now().UTC()
	variants := make([]*models.PostVariant, 0, len(payload.Variants))
	for i, vr := range payload.Variants {
		variantType, ok := models.ParseVariantType(vr.Type)
		if !ok {
			return nil, models.NewValidation(fmt.Sprintf("variant %d has unknown type %q", i, vr.Type))
		}
		if vr.Text == "" && variantType != models.VariantTypePhoto && variantType != models.VariantTypeVideo {
			return nil, models.NewValidation(fmt.Sprintf("variant %d has no text", i))
		}
		if variantType == models.VariantTypeLink && vr.LinkURL == nil {
			return nil, models.NewValidation(fmt.Sprintf("variant %d is a link variant without a link_url", i))
		}

		account, err := s.sa.GetByWorkspace(ctx, workspaceID, vr.SocialAccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, models.NewValidation(fmt.Sprintf("variant %d references a social account outside this workspace", i))
		}
		if !account.IsActive {
			return nil, models.NewValidation(fmt.Sprintf("variant %d references a disconnected social account", i))
		}

		if vr.MediaAssetID != nil {
			owned, err := s.ma.CheckByWorkspace(ctx, *vr.MediaAssetID, workspaceID)
			if err != nil {
				return nil, err
			}
			if !owned {
				return nil, models.NewValidation(fmt.Sprintf("variant %d references a media asset outside this workspace", i))
			}
		}

		var scheduledAtUtc *time.Time
		if vr.ScheduledAt != "" {
			wallClock, err := time.Parse(transfer.ScheduledAtLayout, vr.ScheduledAt)
			if err != nil {
				return nil, models.NewValidation(fmt.Sprintf("variant %d has an invalid scheduled_at, expected %s", i, transfer.ScheduledAtLayout))
			}
			utc := timezone.ToUTC(wallClock, loc)
			scheduledAtUtc = &utc
		}

		variants = append(variants, &models.PostVariant{
			ID:              uuid.New(),
			SocialAccountID: vr.SocialAccountID,
			Type:            variantType,
			Text:            vr.Text,
			LinkURL:         vr.LinkURL,
			MediaAssetID:    vr.MediaAssetID,
			State:           models.VariantStateScheduled,
			ScheduledAtUtc:  scheduledAtUtc,
			CreatedAt:       now,
		})
	}

	post := &models.Post{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		Title:           payload.Post.Title,
		Notes:           payload.Post.Notes,
		CreatedByUserID: userID,
		CreatedAt:       now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	if err := s.pr.Create(ctx, tx, post); err != nil {
		return nil, err
	}
	for _, v := range variants {
		v.PostID = post.ID
		if err := s.pv.Create(ctx, tx, v); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	// Dispatch only after the commit so a worker can never observe a
	// variant that does not exist yet. A dispatch failure leaves the
	// variant scheduled in the database; it is logged, not rolled back.
	for _, v := range variants {
		var err error
		if v.ScheduledAtUtc != nil && v.ScheduledAtUtc.After(now) {
			err = s.scheduler.Schedule(ctx, v.ID, *v.ScheduledAtUtc)
		} else {
			err = s.scheduler.Enqueue(ctx, v.ID)
		}
		if err != nil {
			slog.Error("failed to dispatch publish task", "variant_id", v.ID, "error", err.Error())
		}
	}

	return buildPostDetail(post, variants), nil
}

func (s *postService) GetPost(ctx context.Context, workspaceID, userID, postID uuid.UUID) (*transfer.PostDetail, error) {
	isMember, err := s.wr.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.NewForbidden("user is not a member of this workspace")
	}

	post, err := s.pr.GetByWorkspace(ctx, workspaceID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFound("post not found")
	}

	variants, err := s.pv.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return buildPostDetail(post, variants), nil
}

func (s *postService) ListPosts(ctx context.Context, userID uuid.UUID, filter *transfer.ListPostsFilter) (*transfer.PagedPosts, error) {
	if filter.PageNumber < 1 || filter.PageSize < 1 {
		return nil, models.NewValidation("page_number and page_size must be positive")
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.State != nil {
		switch *filter.State {
		case models.VariantStateDraft, models.VariantStateScheduled, models.VariantStatePublished,
			models.VariantStateFailed, models.VariantStateCancelled:
		default:
			return nil, models.NewValidation(fmt.Sprintf("unknown variant state %q", *filter.State))
		}
	}

	isMember, err := s.wr.IsMember(ctx, filter.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.NewForbidden("user is not a member of this workspace")
	}

	items, total, err := s.pr.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &transfer.PagedPosts{
		Items:      items,
		PageNumber: filter.PageNumber,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}, nil
}

func buildPostDetail(post *models.Post, variants []*models.PostVariant) *transfer.PostDetail {
	detail := &transfer.PostDetail{
		ID:              post.ID,
		WorkspaceID:     post.WorkspaceID,
		Title:           post.Title,
		Notes:           post.Notes,
		CreatedByUserID: post.CreatedByUserID,
		CreatedAt:       post.CreatedAt,
		Variants:        make([]transfer.VariantSummary, 0, len(variants)),
	}
	for _, v := range variants {
		detail.Variants = append(detail.Variants, transfer.VariantSummary{
			ID:               v.ID,
			SocialAccountID:  v.SocialAccountID,
			Type:             v.Type,
			Text:             v.Text,
			State:            v.State,
			ScheduledAtUtc:   v.ScheduledAtUtc,
			PublishedAtUtc:   v.PublishedAtUtc,
			LastErrorMessage: v.LastErrorMessage,
		})
	}
	return detail
}
