package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

// RequestLimitStore is the Postgres-backed store.RequestLimitStore.
type RequestLimitStore struct {
	pool *pgxpool.Pool
}

func NewRequestLimitStore(pool *pgxpool.Pool) *RequestLimitStore {
	return &RequestLimitStore{pool: pool}
}

func (s *RequestLimitStore) Get(ctx context.Context, userID uuid.UUID) (*models.RequestLimit, error) {
	var l models.RequestLimit
	q := `SELECT user_id, remaining, updated_at FROM request_limits WHERE user_id=$1`
	err := s.pool.QueryRow(ctx, q, userID).Scan(&l.UserID, &l.Remaining, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *RequestLimitStore) Put(ctx context.Context, l *models.RequestLimit) error {
	q := `
		INSERT INTO request_limits (user_id, remaining, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET remaining=EXCLUDED.remaining, updated_at=EXCLUDED.updated_at
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, l.UserID, l.Remaining, l.UpdatedAt)
		return err
	})
}
