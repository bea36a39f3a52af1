package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	SetStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	Count(ctx context.Context) (int, error)
}

type BookingRepoImpl struct{ db database.DBTX }

func NewBookingRepo(db database.DBTX) *BookingRepoImpl { return &BookingRepoImpl{db: db} }

const bookingCols = `id, user_id, name, email, phone, tour_type, tour_date,
guests, message, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.Name, &b.Email, &b.Phone, &b.TourType, &b.TourDate,
		&b.Guests, &b.Message, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts b. A zero CreatedAt lets the database stamp the row.
func (r *BookingRepoImpl) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
    user_id, name, email, phone, tour_type, tour_date, guests, message, status, created_at
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, COALESCE($10, now()))
  RETURNING ` + bookingCols

	var createdAt *time.Time
	if !b.CreatedAt.IsZero() {
		createdAt = &b.CreatedAt
	}
	status := b.Status
	if status == "" {
		status = domain.BookingPending
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.db.QueryRow(ctx, q,
		b.UserID, b.Name, b.Email, b.Phone, b.TourType, b.TourDate, b.Guests, b.Message, status, createdAt,
	))
}

func (r *BookingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.db.QueryRow(ctx, q, id))
}

// ListAll returns every booking, newest first. Triage pages are sliced in
// memory by the caller.
func (r *BookingRepoImpl) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings ORDER BY created_at DESC, id DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `UPDATE bookings SET
    name = $2, email = $3, phone = $4, tour_type = $5, tour_date = $6,
    guests = $7, message = $8, updated_at = now()
  WHERE id = $1
  RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.db.QueryRow(ctx, q,
		b.ID, b.Name, b.Email, b.Phone, b.TourType, b.TourDate, b.Guests, b.Message,
	))
}

func (r *BookingRepoImpl) SetStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	const q = `UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.db.QueryRow(ctx, q, id, status))
}

func (r *BookingRepoImpl) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
