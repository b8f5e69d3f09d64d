package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencircle/socialgraph/internal/models"
)

// The memory stores back the test suites and keep the service runnable
// without Postgres. Each is a mutex-guarded slice or map; slices preserve
// insertion order, which the listing contracts rely on.

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.Mutex
	users []models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user with email %q already exists", u.Email)
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) SearchByName(ctx context.Context, fragments []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		name := strings.ToLower(u.Name)
		match := true
		for _, f := range fragments {
			if !strings.Contains(name, strings.ToLower(f)) {
				match = false
				break
			}
		}
		if match {
			out = append(out, u)
		}
	}
	return out, nil
}

// MemoryFriendRequestStore is an in-memory FriendRequestStore.
type MemoryFriendRequestStore struct {
	mu       sync.Mutex
	requests []models.FriendRequest
}

func NewMemoryFriendRequestStore() *MemoryFriendRequestStore {
	return &MemoryFriendRequestStore{}
}

func (s *MemoryFriendRequestStore) Get(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.SenderID == sender && r.ReceiverID == receiver {
			out := r
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryFriendRequestStore) GetPending(ctx context.Context, sender, receiver uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.SenderID == sender && r.ReceiverID == receiver && !r.Accepted {
			out := r
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Create is a no-op when the ordered pair already exists, mirroring the
// ON CONFLICT DO NOTHING semantics of the SQL store.
func (s *MemoryFriendRequestStore) Create(ctx context.Context, r *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.SenderID == r.SenderID && existing.ReceiverID == r.ReceiverID {
			return nil
		}
	}
	s.requests = append(s.requests, *r)
	return nil
}

func (s *MemoryFriendRequestStore) ListPendingByReceiver(ctx context.Context, receiver uuid.UUID) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.ReceiverID == receiver && !r.Accepted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryFriendRequestStore) MarkAccepted(ctx context.Context, sender, receiver uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r.SenderID == sender && r.ReceiverID == receiver && !r.Accepted {
			s.requests[i].Accepted = true
			s.requests[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryFriendRequestStore) Delete(ctx context.Context, sender, receiver uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r.SenderID == sender && r.ReceiverID == receiver {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// MemoryFriendshipStore is an in-memory FriendshipStore.
type MemoryFriendshipStore struct {
	mu    sync.Mutex
	edges []models.Friendship
}

func NewMemoryFriendshipStore() *MemoryFriendshipStore {
	return &MemoryFriendshipStore{}
}

func (s *MemoryFriendshipStore) Create(ctx context.Context, userID, friendID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.UserID == userID && e.FriendID == friendID {
			return nil
		}
	}
	s.edges = append(s.edges, models.Friendship{UserID: userID, FriendID: friendID})
	return nil
}

func (s *MemoryFriendshipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Friendship
	for _, e := range s.edges {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryFriendshipStore) ListByFriend(ctx context.Context, friendID uuid.UUID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Friendship
	for _, e := range s.edges {
		if e.FriendID == friendID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MemoryRequestLimitStore is an in-memory RequestLimitStore.
type MemoryRequestLimitStore struct {
	mu     sync.Mutex
	limits map[uuid.UUID]models.RequestLimit
}

func NewMemoryRequestLimitStore() *MemoryRequestLimitStore {
	return &MemoryRequestLimitStore{limits: make(map[uuid.UUID]models.RequestLimit)}
}

func (s *MemoryRequestLimitStore) Get(ctx context.Context, userID uuid.UUID) (*models.RequestLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limits[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := l
	return &out, nil
}

func (s *MemoryRequestLimitStore) Put(ctx context.Context, l *models.RequestLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[l.UserID] = *l
	return nil
}
