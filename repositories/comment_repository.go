package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByCampaign(ctx context.Context, campaignID int, approvedOnly bool) ([]*models.Comment, error)
	SetApproved(ctx context.Context, id int, approved bool) error
	Delete(ctx context.Context, id int) error
}

type postgresCommentRepository struct {
	db *sql.DB
}

func NewPostgresCommentRepository(db *sql.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (campaign_id, author, body, approved)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		comment.CampaignID, comment.Author, comment.Body, comment.Approved,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *postgresCommentRepository) ListByCampaign(ctx context.Context, campaignID int, approvedOnly bool) ([]*models.Comment, error) {
	query := `SELECT id, campaign_id, author, body, approved, created_at FROM comments WHERE campaign_id = $1`
	if approvedOnly {
		query += ` AND approved = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.CampaignID, &c.Author, &c.Body, &c.Approved, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *postgresCommentRepository) SetApproved(ctx context.Context, id int, approved bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE comments SET approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}

func (r *postgresCommentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}
