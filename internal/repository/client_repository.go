package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coworking/internal/domain"
)

// ClientRepository defines persistence access for coworking clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a Postgres-backed implementation.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, name, surname, patronymic, email, password_hash,
        last_password_change, send_notifications, is_internal, verified, deleted, created_at`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, name, surname, patronymic, email, password_hash, send_notifications, is_internal, verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING last_password_change, created_at`

	err := r.pool.QueryRow(ctx, query,
		client.ID,
		client.Name,
		client.Surname,
		client.Patronymic,
		client.Email,
		client.PasswordHash,
		client.SendNotifications,
		client.IsInternal,
		client.Verified,
	).Scan(&client.LastPasswordChange, &client.CreatedAt)
	return mapError(err)
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id=$1 AND NOT deleted`
	return r.scanOne(ctx, query, id)
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE email=$1 AND NOT deleted`
	return r.scanOne(ctx, query, email)
}

func (r *clientRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*domain.Client, error) {
	const query = `
        UPDATE clients SET password_hash=$2, last_password_change=$3
        WHERE id=$1 AND NOT deleted
        RETURNING ` + clientColumns
	return r.scanOne(ctx, query, id, passwordHash, changedAt)
}

// Delete soft-deletes the account; it disappears from every lookup.
func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE clients SET deleted=TRUE WHERE id=$1 AND NOT deleted`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clientRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&client.ID,
		&client.Name,
		&client.Surname,
		&client.Patronymic,
		&client.Email,
		&client.PasswordHash,
		&client.LastPasswordChange,
		&client.SendNotifications,
		&client.IsInternal,
		&client.Verified,
		&client.Deleted,
		&client.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &client, nil
}
