package repositories

import (
	"context"
	"database/sql"
)

// ReservedSlugRepository guards a small deny-list of slugs that can never be
// sold (admin, api, www and the like).
type ReservedSlugRepository interface {
	IsReserved(ctx context.Context, slug string) (bool, error)
}

type postgresReservedSlugRepository struct {
	db *sql.DB
}

func NewPostgresReservedSlugRepository(db *sql.DB) ReservedSlugRepository {
	return &postgresReservedSlugRepository{db: db}
}

func (r *postgresReservedSlugRepository) IsReserved(ctx context.Context, slug string) (bool, error) {
	var reserved bool
	query := `SELECT EXISTS(SELECT 1 FROM reserved_slugs WHERE slug = $1)`
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&reserved); err != nil {
		return false, err
	}
	return reserved, nil
}
