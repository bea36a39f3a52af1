package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

type LocationRepo interface {
	List(ctx context.Context) ([]domain.Location, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Location, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, slug string, in *domain.LocationReq) (*domain.Location, error)
	Update(ctx context.Context, slug string, in *domain.LocationReq) (*domain.Location, error)
	Delete(ctx context.Context, slug string) error
}

type LocationRepoImpl struct{ db database.DBTX }

func NewLocationRepo(db database.DBTX) *LocationRepoImpl { return &LocationRepoImpl{db: db} }

const locationCols = `id, slug, title, subtitle, card_image, hero_image, description, created_at, updated_at`

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var l domain.Location
	if err := row.Scan(
		&l.ID, &l.Slug, &l.Title, &l.Subtitle, &l.CardImage, &l.HeroImage, &l.Description, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepoImpl) List(ctx context.Context) ([]domain.Location, error) {
	const q = `SELECT ` + locationCols + ` FROM locations ORDER BY title, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *LocationRepoImpl) GetBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	const q = `SELECT ` + locationCols + ` FROM locations WHERE slug = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanLocation(r.db.QueryRow(ctx, q, slug))
}

func (r *LocationRepoImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE slug = $1)`, slug).Scan(&ok)
	return ok, err
}

func (r *LocationRepoImpl) Create(ctx context.Context, slug string, in *domain.LocationReq) (*domain.Location, error) {
	const q = `
INSERT INTO locations (slug, title, subtitle, card_image, hero_image, description)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + locationCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	l, err := scanLocation(r.db.QueryRow(ctx, q, slug, in.Title, in.Subtitle, in.CardImage, in.HeroImage, in.Description))
	if database.IsUniqueViolation(err, "locations_slug_key") {
		return nil, domain.ErrDuplicateLocation
	}
	return l, err
}

func (r *LocationRepoImpl) Update(ctx context.Context, slug string, in *domain.LocationReq) (*domain.Location, error) {
	const q = `
UPDATE locations SET title = $2, subtitle = $3, card_image = $4, hero_image = $5,
  description = $6, updated_at = now()
WHERE slug = $1
RETURNING ` + locationCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanLocation(r.db.QueryRow(ctx, q, slug, in.Title, in.Subtitle, in.CardImage, in.HeroImage, in.Description))
}

func (r *LocationRepoImpl) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, `DELETE FROM locations WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ LocationRepo = (*LocationRepoImpl)(nil)
