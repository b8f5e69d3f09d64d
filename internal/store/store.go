// Package store defines the persistence contracts consumed by the core
// services, plus an in-memory implementation suitable for tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/opencircle/socialgraph/internal/models"
)

// ErrNotFound is returned by every store when no row matches.
var ErrNotFound = errors.New("store: not found")

// UserStore holds user records. Email uniqueness is checked
// case-insensitively; lookups by email are exact.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// SearchByName returns users whose name contains every one of the given
	// fragments as a case-insensitive substring, in insertion order.
	SearchByName(ctx context.Context, fragments []string) ([]models.User, error)
}

// FriendRequestStore holds directed friend requests keyed by the ordered
// (sender, receiver) pair.
type FriendRequestStore interface {
	Get(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error)
	GetPending(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error)
	Create(ctx context.Context, r *models.FriendRequest) error
	ListPendingByReceiver(ctx context.Context, receiver uuid.UUID) ([]models.FriendRequest, error)
	MarkAccepted(ctx context.Context, sender, receiver uuid.UUID) error
	Delete(ctx context.Context, sender, receiver uuid.UUID) error
}

// FriendshipStore holds the directed friendship edges. Create is
// create-if-absent; listing preserves insertion order so pagination over the
// concatenated directions is stable.
type FriendshipStore interface {
	Create(ctx context.Context, userID, friendID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
	ListByFriend(ctx context.Context, friendID uuid.UUID) ([]models.Friendship, error)
}

// RequestLimitStore holds per-user quota state. Put is an upsert; state is
// never deleted.
type RequestLimitStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.RequestLimit, error)
	Put(ctx context.Context, l *models.RequestLimit) error
}

// Clock abstracts time for window computations.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
