package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/database"
)

type UsersRepo interface {
	List(ctx context.Context) ([]domain.User, error)
	ListByType(ctx context.Context, t domain.UserType) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersRepoImpl struct{ db database.DBTX }

func NewUsersRepo(db database.DBTX) *UsersRepoImpl { return &UsersRepoImpl{db: db} }

const userCols = `id, name, COALESCE(email, ''), COALESCE(username, ''), phone, password_hash, type, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Username, &u.Phone, &u.PasswordHash, &u.Type, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) list(ctx context.Context, q string, args ...any) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UsersRepoImpl) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
}

func (r *UsersRepoImpl) ListByType(ctx context.Context, t domain.UserType) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userCols+` FROM users WHERE type = $1 ORDER BY id`, t)
}

func (r *UsersRepoImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *UsersRepoImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.db.QueryRow(ctx, q, email))
}

func (r *UsersRepoImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.db.QueryRow(ctx, q, username))
}

func (r *UsersRepoImpl) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	const q = `
INSERT INTO users (name, email, username, phone, password_hash, type)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(ctx, q, in.Name, in.Email, in.Username, in.Phone, in.PasswordHash, in.Type))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return u, nil
}

// Update applies only the non-nil fields of patch.
func (r *UsersRepoImpl) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	const q = `
UPDATE users SET
  name = COALESCE($2, name),
  email = COALESCE(NULLIF($3, ''), email),
  phone = COALESCE($4, phone),
  password_hash = COALESCE($5, password_hash),
  type = COALESCE($6, type),
  updated_at = now()
WHERE id = $1
RETURNING ` + userCols
	var typ *string
	if patch.Type != nil {
		s := string(*patch.Type)
		typ = &s
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(ctx, q, id, patch.Name, patch.Email, patch.Phone, patch.PasswordHash, typ))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return u, nil
}

func (r *UsersRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapUserConflict(err error) error {
	switch {
	case database.IsUniqueViolation(err, "users_email_key"):
		return domain.ErrDuplicateEmail
	case database.IsUniqueViolation(err, "users_username_key"):
		return domain.ErrDuplicateUsername
	default:
		return err
	}
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
