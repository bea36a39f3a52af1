package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/pkg/database"
)

// IdempotencyRepo remembers which booking an Idempotency-Key produced.
type IdempotencyRepo interface {
	// Lookup returns the booking created under key, or 0 when the key is new.
	Lookup(ctx context.Context, key string) (int64, error)
	// Remember binds key to bookingID. An existing binding wins.
	Remember(ctx context.Context, key string, bookingID int64, ttl time.Duration) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct{ db database.DBTX }

func NewIdempotencyRepo(db database.DBTX) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{db: db}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (r *IdempotencyRepoImpl) Lookup(ctx context.Context, key string) (int64, error) {
	const q = `SELECT booking_id FROM booking_idempotency WHERE key_hash = $1 AND expires_at > now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var id int64
	err := r.db.QueryRow(ctx, q, hashKey(key)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

func (r *IdempotencyRepoImpl) Remember(ctx context.Context, key string, bookingID int64, ttl time.Duration) error {
	const q = `
INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key_hash) DO NOTHING`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.Exec(ctx, q, hashKey(key), bookingID, time.Now().Add(ttl))
	return err
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, `DELETE FROM booking_idempotency WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)
