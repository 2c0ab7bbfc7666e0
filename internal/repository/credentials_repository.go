package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// CredentialsRepository stores password hashes keyed by user id.
type CredentialsRepository interface {
	Upsert(ctx context.Context, creds *domain.Credentials) error
	GetByUserID(ctx context.Context, userID string) (*domain.Credentials, error)
}

type credentialsRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialsRepository constructs the Postgres repository.
func NewCredentialsRepository(pool *pgxpool.Pool) CredentialsRepository {
	return &credentialsRepository{pool: pool}
}

func (r *credentialsRepository) Upsert(ctx context.Context, creds *domain.Credentials) error {
	const query = `
        INSERT INTO user_credentials (user_id, password_hash)
        VALUES ($1,$2)
        ON CONFLICT (user_id) DO UPDATE SET password_hash=EXCLUDED.password_hash, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, creds.UserID, creds.PasswordHash).Scan(&creds.UpdatedAt)
}

func (r *credentialsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credentials, error) {
	const query = `
        SELECT user_id, password_hash, updated_at
        FROM user_credentials WHERE user_id=$1`
	var creds domain.Credentials
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&creds.UserID,
		&creds.PasswordHash,
		&creds.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.KindUser, userID)
		}
		return nil, err
	}
	return &creds, nil
}

type memoryCredentialsRepository struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

// NewMemoryCredentialsRepository builds an in-memory credentials store.
func NewMemoryCredentialsRepository() CredentialsRepository {
	return &memoryCredentialsRepository{creds: make(map[string]domain.Credentials)}
}

func (r *memoryCredentialsRepository) Upsert(ctx context.Context, creds *domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	creds.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.creds[creds.UserID] = *creds
	r.mu.Unlock()
	return nil
}

func (r *memoryCredentialsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	creds, ok := r.creds[userID]
	if !ok {
		return nil, domain.NotFound(domain.KindUser, userID)
	}
	return &creds, nil
}
