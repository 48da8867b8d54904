package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
)

var (
	ErrPhotoNotFound        = errors.New("photo not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrSponsorNotFound      = errors.New("sponsor not found")
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id int) (*models.Photo, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Photo, error)
	UpdateCaption(ctx context.Context, id int, caption *string) error
	Delete(ctx context.Context, id int) error
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	SetPinned(ctx context.Context, id int, pinned bool) error
	Delete(ctx context.Context, id int) error
}

type SponsorRepository interface {
	Create(ctx context.Context, s *models.Sponsor) error
	GetByID(ctx context.Context, id int) (*models.Sponsor, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Sponsor, error)
	Update(ctx context.Context, s *models.Sponsor) error
	Delete(ctx context.Context, id int) error
}

type postgresPhotoRepository struct{ db *sql.DB }

func NewPostgresPhotoRepository(db *sql.DB) PhotoRepository {
	return &postgresPhotoRepository{db: db}
}

func (r *postgresPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (campaign_id, key, caption)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, photo.CampaignID, photo.Key, photo.Caption).
		Scan(&photo.ID, &photo.CreatedAt)
}

func (r *postgresPhotoRepository) GetByID(ctx context.Context, id int) (*models.Photo, error) {
	var p models.Photo
	query := `SELECT id, campaign_id, key, caption, created_at FROM photos WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.CampaignID, &p.Key, &p.Caption, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPhotoRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Photo, error) {
	query := `SELECT id, campaign_id, key, caption, created_at FROM photos WHERE campaign_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]*models.Photo, 0)
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.CampaignID, &p.Key, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, &p)
	}
	return photos, rows.Err()
}

func (r *postgresPhotoRepository) UpdateCaption(ctx context.Context, id int, caption *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE photos SET caption = $1 WHERE id = $2`, caption, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhotoNotFound)
}

func (r *postgresPhotoRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhotoNotFound)
}

type postgresAnnouncementRepository struct{ db *sql.DB }

func NewPostgresAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &postgresAnnouncementRepository{db: db}
}

func (r *postgresAnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (campaign_id, title, body, pinned)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, a.CampaignID, a.Title, a.Body, a.Pinned).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *postgresAnnouncementRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Announcement, error) {
	query := `
		SELECT id, campaign_id, title, body, pinned, created_at
		FROM announcements
		WHERE campaign_id = $1
		ORDER BY pinned DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.CampaignID, &a.Title, &a.Body, &a.Pinned, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *postgresAnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	query := `UPDATE announcements SET title = $1, body = $2, pinned = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, a.Title, a.Body, a.Pinned, a.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnnouncementNotFound)
}

func (r *postgresAnnouncementRepository) SetPinned(ctx context.Context, id int, pinned bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE announcements SET pinned = $1 WHERE id = $2`, pinned, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnnouncementNotFound)
}

func (r *postgresAnnouncementRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnnouncementNotFound)
}

type postgresSponsorRepository struct{ db *sql.DB }

func NewPostgresSponsorRepository(db *sql.DB) SponsorRepository {
	return &postgresSponsorRepository{db: db}
}

func (r *postgresSponsorRepository) Create(ctx context.Context, s *models.Sponsor) error {
	query := `
		INSERT INTO sponsors (campaign_id, name, link_url, image_key, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, s.CampaignID, s.Name, s.LinkURL, s.ImageKey, s.Position).
		Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresSponsorRepository) GetByID(ctx context.Context, id int) (*models.Sponsor, error) {
	query := `
		SELECT id, campaign_id, name, link_url, image_key, position, created_at
		FROM sponsors
		WHERE id = $1`
	var s models.Sponsor
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.CampaignID, &s.Name, &s.LinkURL, &s.ImageKey, &s.Position, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSponsorNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSponsorRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Sponsor, error) {
	query := `
		SELECT id, campaign_id, name, link_url, image_key, position, created_at
		FROM sponsors
		WHERE campaign_id = $1
		ORDER BY position ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sponsors := make([]*models.Sponsor, 0)
	for rows.Next() {
		var s models.Sponsor
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.Name, &s.LinkURL, &s.ImageKey, &s.Position, &s.CreatedAt); err != nil {
			return nil, err
		}
		sponsors = append(sponsors, &s)
	}
	return sponsors, rows.Err()
}

func (r *postgresSponsorRepository) Update(ctx context.Context, s *models.Sponsor) error {
	query := `UPDATE sponsors SET name = $1, link_url = $2, image_key = $3, position = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, s.Name, s.LinkURL, s.ImageKey, s.Position, s.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}

func (r *postgresSponsorRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}
