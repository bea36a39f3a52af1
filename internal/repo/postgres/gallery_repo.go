package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

// GalleryRepo manages tour_experience_gallery. Package updates never call
// it; images are added and removed through their own endpoints.
type GalleryRepo interface {
	Create(ctx context.Context, tourID int64, img domain.GalleryImage) (*domain.GalleryImage, error)
	ListByPackage(ctx context.Context, tourID int64) ([]domain.GalleryImage, error)
	ListByPackages(ctx context.Context, tourIDs []int64) (map[int64][]domain.GalleryImage, error)
	DeleteByPackage(ctx context.Context, tourID int64) (int64, error)
	Delete(ctx context.Context, tourID, imageID int64) error
	WithTx(tx pgx.Tx) GalleryRepo
}

type GalleryRepoImpl struct{ db database.DBTX }

func NewGalleryRepo(db database.DBTX) *GalleryRepoImpl { return &GalleryRepoImpl{db: db} }

func (r *GalleryRepoImpl) WithTx(tx pgx.Tx) GalleryRepo { return &GalleryRepoImpl{db: tx} }

const galleryCols = `id, tour_package_id, image_url, alt, hint, sort_order, created_at`

func scanGallery(row pgx.Row) (domain.GalleryImage, error) {
	var g domain.GalleryImage
	err := row.Scan(&g.ID, &g.TourPackageID, &g.ImageURL, &g.Alt, &g.Hint, &g.SortOrder, &g.CreatedAt)
	return g, err
}

func (r *GalleryRepoImpl) Create(ctx context.Context, tourID int64, img domain.GalleryImage) (*domain.GalleryImage, error) {
	const q = `
INSERT INTO tour_experience_gallery (tour_package_id, image_url, alt, hint, sort_order)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + galleryCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	g, err := scanGallery(r.db.QueryRow(ctx, q, tourID, img.ImageURL, img.Alt, img.Hint, img.SortOrder))
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GalleryRepoImpl) ListByPackage(ctx context.Context, tourID int64) ([]domain.GalleryImage, error) {
	byTour, err := r.ListByPackages(ctx, []int64{tourID})
	if err != nil {
		return nil, err
	}
	if imgs := byTour[tourID]; imgs != nil {
		return imgs, nil
	}
	return []domain.GalleryImage{}, nil
}

func (r *GalleryRepoImpl) ListByPackages(ctx context.Context, tourIDs []int64) (map[int64][]domain.GalleryImage, error) {
	const q = `SELECT ` + galleryCols + ` FROM tour_experience_gallery
WHERE tour_package_id = ANY($1) ORDER BY tour_package_id, sort_order, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, q, tourIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.GalleryImage, len(tourIDs))
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, err
		}
		out[g.TourPackageID] = append(out[g.TourPackageID], g)
	}
	return out, rows.Err()
}

func (r *GalleryRepoImpl) DeleteByPackage(ctx context.Context, tourID int64) (int64, error) {
	const q = `DELETE FROM tour_experience_gallery WHERE tour_package_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, q, tourID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *GalleryRepoImpl) Delete(ctx context.Context, tourID, imageID int64) error {
	const q = `DELETE FROM tour_experience_gallery WHERE id = $1 AND tour_package_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, q, imageID, tourID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ GalleryRepo = (*GalleryRepoImpl)(nil)
