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

// FriendRequestStore is the Postgres-backed store.FriendRequestStore.
type FriendRequestStore struct {
	pool *pgxpool.Pool
}

func NewFriendRequestStore(pool *pgxpool.Pool) *FriendRequestStore {
	return &FriendRequestStore{pool: pool}
}

const requestColumns = `sender_id, receiver_id, accepted, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.FriendRequest, error) {
	var r models.FriendRequest
	err := row.Scan(&r.SenderID, &r.ReceiverID, &r.Accepted, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *FriendRequestStore) Get(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM friend_requests WHERE sender_id=$1 AND receiver_id=$2`
	return scanRequest(s.pool.QueryRow(ctx, q, sender, receiver))
}

func (s *FriendRequestStore) GetPending(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM friend_requests
	      WHERE sender_id=$1 AND receiver_id=$2 AND accepted=false`
	return scanRequest(s.pool.QueryRow(ctx, q, sender, receiver))
}

func (s *FriendRequestStore) Create(ctx context.Context, r *models.FriendRequest) error {
	q := `
		INSERT INTO friend_requests (sender_id, receiver_id, accepted, created_at, updated_at)
		VALUES ($1, $2, false, $3, $4)
		ON CONFLICT (sender_id, receiver_id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, r.SenderID, r.ReceiverID, r.CreatedAt, r.UpdatedAt)
		return err
	})
}

func (s *FriendRequestStore) ListPendingByReceiver(ctx context.Context, receiver uuid.UUID) ([]models.FriendRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM friend_requests
	      WHERE receiver_id=$1 AND accepted=false
	      ORDER BY created_at`
	rows, err := s.pool.Query(ctx, q, receiver)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var r models.FriendRequest
		if err := rows.Scan(&r.SenderID, &r.ReceiverID, &r.Accepted, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *FriendRequestStore) MarkAccepted(ctx context.Context, sender, receiver uuid.UUID) error {
	q := `
		UPDATE friend_requests
		SET accepted=true, updated_at=NOW()
		WHERE sender_id=$1 AND receiver_id=$2 AND accepted=false
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, sender, receiver)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *FriendRequestStore) Delete(ctx context.Context, sender, receiver uuid.UUID) error {
	q := `DELETE FROM friend_requests WHERE sender_id=$1 AND receiver_id=$2`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, sender, receiver)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// FriendshipStore is the Postgres-backed store.FriendshipStore. Rows carry a
// serial id so listings come back in insertion order.
type FriendshipStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipStore(pool *pgxpool.Pool) *FriendshipStore {
	return &FriendshipStore{pool: pool}
}

func (s *FriendshipStore) Create(ctx context.Context, userID, friendID uuid.UUID) error {
	q := `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, userID, friendID)
		return err
	})
}

func (s *FriendshipStore) listWhere(ctx context.Context, column string, id uuid.UUID) ([]models.Friendship, error) {
	q := `SELECT user_id, friend_id FROM friendships WHERE ` + column + `=$1 ORDER BY id`
	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []models.Friendship
	for rows.Next() {
		var e models.Friendship
		if err := rows.Scan(&e.UserID, &e.FriendID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *FriendshipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	return s.listWhere(ctx, "user_id", userID)
}

func (s *FriendshipStore) ListByFriend(ctx context.Context, friendID uuid.UUID) ([]models.Friendship, error) {
	return s.listWhere(ctx, "friend_id", friendID)
}
