package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/slug"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

// TourRepo writes a tour package together with its highlights, inclusions,
// itinerary and gallery. Every multi-table write runs in one transaction.
type TourRepo interface {
	List(ctx context.Context) ([]domain.TourPackage, error)
	GetByID(ctx context.Context, id int64) (*domain.TourPackage, error)
	GetBySlug(ctx context.Context, slug string) (*domain.TourPackage, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, req *domain.TourPackageReq) (id int64, slug string, err error)
	Update(ctx context.Context, id int64, req *domain.TourPackageReq) error
	UpdateImagePaths(ctx context.Context, id int64, homepageImageURL, heroImageURL string) error
	Delete(ctx context.Context, id int64) error
}

type TourRepoImpl struct {
	pool      *pgxpool.Pool
	itinerary ItineraryRepo
	gallery   GalleryRepo
}

func NewTourRepo(pool *pgxpool.Pool, itinerary ItineraryRepo, gallery GalleryRepo) *TourRepoImpl {
	return &TourRepoImpl{pool: pool, itinerary: itinerary, gallery: gallery}
}

const tourCols = `id, slug, homepage_title, homepage_description,
homepage_image_url, homepage_image_alt, homepage_image_hint,
tour_page_title, duration, price, price_suffix,
hero_image_url, hero_image_hint, tour_page_description, booking_link,
created_at, updated_at`

func scanTour(row pgx.Row) (domain.TourPackage, error) {
	var t domain.TourPackage
	err := row.Scan(
		&t.ID, &t.Slug, &t.HomepageTitle, &t.HomepageDescription,
		&t.HomepageImageURL, &t.HomepageImageAlt, &t.HomepageImageHint,
		&t.TourPageTitle, &t.Duration, &t.Price, &t.PriceSuffix,
		&t.HeroImageURL, &t.HeroImageHint, &t.TourPageDescription, &t.BookingLink,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TourRepoImpl) List(ctx context.Context) ([]domain.TourPackage, error) {
	const q = `SELECT ` + tourCols + ` FROM tour_packages ORDER BY id`
	qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(qctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := make([]domain.TourPackage, 0)
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.compose(ctx, tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepoImpl) GetByID(ctx context.Context, id int64) (*domain.TourPackage, error) {
	const q = `SELECT ` + tourCols + ` FROM tour_packages WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *TourRepoImpl) GetBySlug(ctx context.Context, s string) (*domain.TourPackage, error) {
	const q = `SELECT ` + tourCols + ` FROM tour_packages WHERE slug = $1`
	return r.getOne(ctx, q, s)
}

func (r *TourRepoImpl) getOne(ctx context.Context, q string, arg any) (*domain.TourPackage, error) {
	qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	t, err := scanTour(r.pool.QueryRow(qctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tours := []domain.TourPackage{t}
	if err := r.compose(ctx, tours); err != nil {
		return nil, err
	}
	return &tours[0], nil
}

// compose attaches the four child collections, each ordered by sort_order.
func (r *TourRepoImpl) compose(ctx context.Context, tours []domain.TourPackage) error {
	if len(tours) == 0 {
		return nil
	}
	ids := make([]int64, len(tours))
	for i, t := range tours {
		ids[i] = t.ID
	}

	highlights, err := listHighlights(ctx, r.pool, ids)
	if err != nil {
		return fmt.Errorf("load highlights: %w", err)
	}
	inclusions, err := listInclusions(ctx, r.pool, ids)
	if err != nil {
		return fmt.Errorf("load inclusions: %w", err)
	}
	itinerary, err := r.itinerary.ListByPackages(ctx, ids)
	if err != nil {
		return fmt.Errorf("load itinerary: %w", err)
	}
	gallery, err := r.gallery.ListByPackages(ctx, ids)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	for i := range tours {
		id := tours[i].ID
		tours[i].Highlights = orEmpty(highlights[id])
		tours[i].Inclusions = orEmpty(inclusions[id])
		tours[i].Itinerary = orEmpty(itinerary[id])
		tours[i].ExperienceGallery = orEmpty(gallery[id])
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *TourRepoImpl) SlugExists(ctx context.Context, s string) (bool, error) {
	return slugExists(ctx, r.pool, s)
}

func slugExists(ctx context.Context, db database.DBTX, s string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tour_packages WHERE slug = $1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var exists bool
	err := db.QueryRow(ctx, q, s).Scan(&exists)
	return exists, err
}

func (r *TourRepoImpl) Create(ctx context.Context, req *domain.TourPackageReq) (int64, string, error) {
	const q = `
INSERT INTO tour_packages (
  slug, homepage_title, homepage_description, homepage_image_url,
  homepage_image_alt, homepage_image_hint, tour_page_title, duration, price,
  price_suffix, hero_image_url, hero_image_hint, tour_page_description, booking_link
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		id      int64
		tourSlg string
	)
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := resolveSlug(ctx, tx, req)
		if err != nil {
			return err
		}
		tourSlg = s

		if err := tx.QueryRow(ctx, q,
			s, req.HomepageTitle, req.HomepageDescription, req.HomepageImageURL,
			req.HomepageImageAlt, req.HomepageImageHint, req.TourPageTitle, req.Duration, req.Price,
			req.PriceSuffix, req.HeroImageURL, req.HeroImageHint, req.TourPageDescription, req.BookingLink,
		).Scan(&id); err != nil {
			if database.IsUniqueViolation(err, "tour_packages_slug_key") {
				return domain.ErrDuplicateSlug
			}
			return fmt.Errorf("insert tour package: %w", err)
		}

		if err := r.insertChildren(ctx, tx, id, req); err != nil {
			return err
		}

		gallery := r.gallery.WithTx(tx)
		for _, img := range req.ExperienceGallery {
			if _, err := gallery.Create(ctx, id, img); err != nil {
				return fmt.Errorf("insert gallery image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return id, tourSlg, nil
}

// resolveSlug honours an explicit id from the payload and otherwise derives
// a free slug from the homepage title.
func resolveSlug(ctx context.Context, db database.DBTX, req *domain.TourPackageReq) (string, error) {
	exists := func(ctx context.Context, s string) (bool, error) { return slugExists(ctx, db, s) }

	if req.ID != "" {
		s := slug.Make(req.ID)
		if s == "" {
			return "", domain.NewValidationError("id", "must contain letters or digits")
		}
		taken, err := exists(ctx, s)
		if err != nil {
			return "", err
		}
		if taken {
			return "", domain.ErrDuplicateSlug
		}
		return s, nil
	}

	base := slug.Make(req.HomepageTitle)
	if base == "" {
		base = "tour"
	}
	return slug.Unique(ctx, base, exists)
}

// insertChildren writes highlights, inclusions and itinerary. The gallery is
// not part of it: updates must leave gallery rows alone.
func (r *TourRepoImpl) insertChildren(ctx context.Context, tx pgx.Tx, id int64, req *domain.TourPackageReq) error {
	const qh = `INSERT INTO tour_highlights (tour_package_id, icon, title, description, sort_order) VALUES ($1,$2,$3,$4,$5)`
	const qi = `INSERT INTO tour_inclusions (tour_package_id, text, sort_order) VALUES ($1,$2,$3)`

	batch := &pgx.Batch{}
	for _, h := range req.Highlights {
		batch.Queue(qh, id, h.Icon, h.Title, h.Description, h.SortOrder)
	}
	for _, in := range req.Inclusions {
		batch.Queue(qi, id, in.Text, in.SortOrder)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert highlights and inclusions: %w", err)
		}
	}

	itinerary := r.itinerary.WithTx(tx)
	for _, item := range req.Itinerary {
		if _, err := itinerary.Create(ctx, id, item); err != nil {
			return fmt.Errorf("insert itinerary item: %w", err)
		}
	}
	return nil
}

func (r *TourRepoImpl) Update(ctx context.Context, id int64, req *domain.TourPackageReq) error {
	const q = `
UPDATE tour_packages SET
  homepage_title = $1, homepage_description = $2, homepage_image_url = $3,
  homepage_image_alt = $4, homepage_image_hint = $5, tour_page_title = $6,
  duration = $7, price = $8, price_suffix = $9, hero_image_url = $10,
  hero_image_hint = $11, tour_page_description = $12, booking_link = $13, updated_at = now()
WHERE id = $14`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q,
			req.HomepageTitle, req.HomepageDescription, req.HomepageImageURL,
			req.HomepageImageAlt, req.HomepageImageHint, req.TourPageTitle,
			req.Duration, req.Price, req.PriceSuffix, req.HeroImageURL,
			req.HeroImageHint, req.TourPageDescription, req.BookingLink, id,
		)
		if err != nil {
			return fmt.Errorf("update tour package: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tour_highlights WHERE tour_package_id = $1`, id); err != nil {
			return fmt.Errorf("clear highlights: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tour_inclusions WHERE tour_package_id = $1`, id); err != nil {
			return fmt.Errorf("clear inclusions: %w", err)
		}
		if _, err := r.itinerary.WithTx(tx).DeleteByPackage(ctx, id); err != nil {
			return fmt.Errorf("clear itinerary: %w", err)
		}
		return r.insertChildren(ctx, tx, id, req)
	})
}

func (r *TourRepoImpl) UpdateImagePaths(ctx context.Context, id int64, homepageImageURL, heroImageURL string) error {
	const q = `
UPDATE tour_packages
SET homepage_image_url = COALESCE(NULLIF($1, ''), homepage_image_url),
    hero_image_url = COALESCE(NULLIF($2, ''), hero_image_url),
    updated_at = now()
WHERE id = $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, homepageImageURL, heroImageURL, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TourRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tour_highlights WHERE tour_package_id = $1`, id); err != nil {
			return fmt.Errorf("delete highlights: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tour_inclusions WHERE tour_package_id = $1`, id); err != nil {
			return fmt.Errorf("delete inclusions: %w", err)
		}
		if _, err := r.itinerary.WithTx(tx).DeleteByPackage(ctx, id); err != nil {
			return fmt.Errorf("delete itinerary: %w", err)
		}
		if _, err := r.gallery.WithTx(tx).DeleteByPackage(ctx, id); err != nil {
			return fmt.Errorf("delete gallery: %w", err)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM tour_packages WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete tour package: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func listHighlights(ctx context.Context, db database.DBTX, ids []int64) (map[int64][]domain.Highlight, error) {
	const q = `SELECT id, tour_package_id, icon, title, description, sort_order
FROM tour_highlights WHERE tour_package_id = ANY($1) ORDER BY tour_package_id, sort_order, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.Highlight, len(ids))
	for rows.Next() {
		var (
			h      domain.Highlight
			tourID int64
		)
		if err := rows.Scan(&h.ID, &tourID, &h.Icon, &h.Title, &h.Description, &h.SortOrder); err != nil {
			return nil, err
		}
		out[tourID] = append(out[tourID], h)
	}
	return out, rows.Err()
}

func listInclusions(ctx context.Context, db database.DBTX, ids []int64) (map[int64][]domain.Inclusion, error) {
	const q = `SELECT id, tour_package_id, text, sort_order
FROM tour_inclusions WHERE tour_package_id = ANY($1) ORDER BY tour_package_id, sort_order, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.Inclusion, len(ids))
	for rows.Next() {
		var (
			in     domain.Inclusion
			tourID int64
		)
		if err := rows.Scan(&in.ID, &tourID, &in.Text, &in.SortOrder); err != nil {
			return nil, err
		}
		out[tourID] = append(out[tourID], in)
	}
	return out, rows.Err()
}

var _ TourRepo = (*TourRepoImpl)(nil)
