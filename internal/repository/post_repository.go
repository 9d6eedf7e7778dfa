package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
	"github.com/socialorchestrator/api/internal/transfer"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetByWorkspace(ctx context.Context, workspaceID, postID uuid.UUID) (*models.Post, error)
	List(ctx context.Context, filter *transfer.ListPostsFilter) ([]*transfer.PostListItem, int, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	query := `
		INSERT INTO posts (id, workspace_id, title, notes, created_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, post.ID, post.WorkspaceID, post.Title, post.Notes, post.CreatedByUserID, post.CreatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, post.ID, post.WorkspaceID, post.Title, post.Notes, post.CreatedByUserID, post.CreatedAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *postRepository) GetByWorkspace(ctx context.Context, workspaceID, postID uuid.UUID) (*models.Post, error) {
	query := `
		SELECT id, workspace_id, title, notes, created_by_user_id, created_at
		FROM posts WHERE id = $1 AND workspace_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, postID, workspaceID)

	var post models.Post
	err := row.Scan(&post.ID, &post.WorkspaceID, &post.Title, &post.Notes, &post.CreatedByUserID, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}

const listPostsFilterClause = `
	p.workspace_id = $1
	AND ($2::timestamptz IS NULL OR p.created_at >= $2)
	AND ($3::timestamptz IS NULL OR p.created_at <= $3)
	AND ($4::text IS NULL OR EXISTS (
		SELECT 1 FROM post_variants x WHERE x.post_id = p.id AND x.state = $4))
	AND ($5::uuid IS NULL OR EXISTS (
		SELECT 1 FROM post_variants x WHERE x.post_id = p.id AND x.social_account_id = $5))
`

// List returns one page of posts, newest first, each annotated with its
// variant state counts.
func (r *postRepository) List(ctx context.Context, filter *transfer.ListPostsFilter) ([]*transfer.PostListItem, int, error) {
	countQuery := `SELECT COUNT(*) FROM posts p WHERE ` + listPostsFilterClause

	var total int
	err := r.db.QueryRowContext(ctx, countQuery,
		filter.WorkspaceID, filter.FromUtc, filter.ToUtc, filter.State, filter.SocialAccountID,
	).Scan(&total)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := `
		SELECT p.id, p.title, p.created_at,
			COUNT(v.id),
			COUNT(v.id) FILTER (WHERE v.state = 'published'),
			COUNT(v.id) FILTER (WHERE v.state = 'failed'),
			COUNT(v.id) FILTER (WHERE v.state = 'scheduled')
		FROM posts p
		LEFT JOIN post_variants v ON v.post_id = p.id
		WHERE ` + listPostsFilterClause + `
		GROUP BY p.id, p.title, p.created_at
		ORDER BY p.created_at DESC
		LIMIT $6 OFFSET $7
	`

	offset := (filter.PageNumber - 1) * filter.PageSize
	rows, err := r.db.QueryContext(ctx, query,
		filter.WorkspaceID, filter.FromUtc, filter.ToUtc, filter.State, filter.SocialAccountID,
		filter.PageSize, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var items []*transfer.PostListItem
	for rows.Next() {
		var item transfer.PostListItem
		err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt,
			&item.VariantCount, &item.PublishedCount, &item.FailedCount, &item.ScheduledCount)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return items, total, nil
}
