package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfront/shopfront/internal/domain/auth"
)

const (
	insertAdminSQL = `INSERT INTO admins (name, email, password_hash)
		VALUES ($1, $2, $3) RETURNING id, created_at`

	getAdminByEmailSQL = `SELECT id, name, email, password_hash, created_at
		FROM admins WHERE email = $1`
)

var _ auth.Repository = (*AdminRepository)(nil)

// AdminRepository provides admin account lookups backed by PostgreSQL.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns an AdminRepository that uses the given pool.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// Create inserts a new admin account. A duplicate email surfaces as
// auth.ErrEmailTaken.
func (r *AdminRepository) Create(ctx context.Context, a *auth.Admin) error {
	err := r.pool.QueryRow(ctx, insertAdminSQL, a.Name, a.Email, a.PasswordHash).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("creating admin: %w", err)
	}
	return nil
}

// GetByEmail looks up an admin account by email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*auth.Admin, error) {
	var a auth.Admin
	err := r.pool.QueryRow(ctx, getAdminByEmailSQL, email).
		Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("getting admin %q: %w", email, err)
	}
	return &a, nil
}
