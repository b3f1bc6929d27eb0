package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coworking/internal/domain"
)

// AdminRepository handles persistence for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*domain.Admin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminColumns = `id, email, password_hash, last_password_change, deleted, created_at`

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (id, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING last_password_change, created_at`

	err := r.pool.QueryRow(ctx, query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
	).Scan(&admin.LastPasswordChange, &admin.CreatedAt)
	return mapError(err)
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE id=$1 AND NOT deleted`
	return r.scanOne(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE email=$1 AND NOT deleted`
	return r.scanOne(ctx, query, email)
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*domain.Admin, error) {
	const query = `
        UPDATE admins SET password_hash=$2, last_password_change=$3
        WHERE id=$1 AND NOT deleted
        RETURNING ` + adminColumns
	return r.scanOne(ctx, query, id, passwordHash, changedAt)
}

// Delete soft-deletes the account; it disappears from every lookup.
func (r *adminRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE admins SET deleted=TRUE WHERE id=$1 AND NOT deleted`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adminRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Admin, error) {
	var admin domain.Admin
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.LastPasswordChange,
		&admin.Deleted,
		&admin.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &admin, nil
}
