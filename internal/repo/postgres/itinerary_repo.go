package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

type ItineraryRepo interface {
	Create(ctx context.Context, tourID int64, item domain.ItineraryItem) (*domain.ItineraryItem, error)
	ListByPackage(ctx context.Context, tourID int64) ([]domain.ItineraryItem, error)
	ListByPackages(ctx context.Context, tourIDs []int64) (map[int64][]domain.ItineraryItem, error)
	DeleteByPackage(ctx context.Context, tourID int64) (int64, error)
	WithTx(tx pgx.Tx) ItineraryRepo
}

type ItineraryRepoImpl struct{ db database.DBTX }

func NewItineraryRepo(db database.DBTX) *ItineraryRepoImpl { return &ItineraryRepoImpl{db: db} }

// WithTx returns a writer bound to tx.
func (r *ItineraryRepoImpl) WithTx(tx pgx.Tx) ItineraryRepo { return &ItineraryRepoImpl{db: tx} }

const itineraryCols = `id, tour_package_id, time, title, description, sort_order`

func scanItinerary(row pgx.Row) (domain.ItineraryItem, error) {
	var it domain.ItineraryItem
	err := row.Scan(&it.ID, &it.TourPackageID, &it.Time, &it.Title, &it.Description, &it.SortOrder)
	return it, err
}

func (r *ItineraryRepoImpl) Create(ctx context.Context, tourID int64, item domain.ItineraryItem) (*domain.ItineraryItem, error) {
	const q = `
INSERT INTO tour_itinerary (tour_package_id, time, title, description, sort_order)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + itineraryCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	it, err := scanItinerary(r.db.QueryRow(ctx, q, tourID, item.Time, item.Title, item.Description, item.SortOrder))
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItineraryRepoImpl) ListByPackage(ctx context.Context, tourID int64) ([]domain.ItineraryItem, error) {
	byTour, err := r.ListByPackages(ctx, []int64{tourID})
	if err != nil {
		return nil, err
	}
	if items := byTour[tourID]; items != nil {
		return items, nil
	}
	return []domain.ItineraryItem{}, nil
}

func (r *ItineraryRepoImpl) ListByPackages(ctx context.Context, tourIDs []int64) (map[int64][]domain.ItineraryItem, error) {
	const q = `SELECT ` + itineraryCols + ` FROM tour_itinerary
WHERE tour_package_id = ANY($1) ORDER BY tour_package_id, sort_order, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, q, tourIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.ItineraryItem, len(tourIDs))
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out[it.TourPackageID] = append(out[it.TourPackageID], it)
	}
	return out, rows.Err()
}

func (r *ItineraryRepoImpl) DeleteByPackage(ctx context.Context, tourID int64) (int64, error) {
	const q = `DELETE FROM tour_itinerary WHERE tour_package_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, q, tourID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

var _ ItineraryRepo = (*ItineraryRepoImpl)(nil)
