package friends

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	svc         *Service
	limiter     *Limiter
	users       *store.MemoryUserStore
	requests    *store.MemoryFriendRequestStore
	friendships *store.MemoryFriendshipStore
	limits      *store.MemoryRequestLimitStore
	clock       *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       store.NewMemoryUserStore(),
		requests:    store.NewMemoryFriendRequestStore(),
		friendships: store.NewMemoryFriendshipStore(),
		limits:      store.NewMemoryRequestLimitStore(),
		clock:       &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.limiter = NewLimiter(f.limits, f.clock)
	f.svc = NewService(f.users, f.requests, f.friendships, f.limiter, f.clock, nil, nil)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: email, Name: name, Active: true}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestFirstSendInitializesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", "alice@example.com")
	f.addUser(t, "Bob", "bob@example.com")

	_, err := f.svc.Send(ctx, alice.ID, "bob@example.com")
	require.NoError(t, err)

	lim, err := f.limits.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 2, lim.Remaining)
	require.Equal(t, f.clock.Now(), lim.UpdatedAt)
}

func TestCheckAloneCreatesNoState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", "alice@example.com")

	require.NoError(t, f.limiter.Check(ctx, alice.ID))

	_, err := f.limits.Get(ctx, alice.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDenyWhenQuotaExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", "alice@example.com")
	f.addUser(t, "Bob", "bob@example.com")

	windowStart := f.clock.Now().Add(-30 * time.Second)
	require.NoError(t, f.limits.Put(ctx, &models.RequestLimit{
		UserID:    alice.ID,
		Remaining: 0,
		UpdatedAt: windowStart,
	}))

	_, err := f.svc.Send(ctx, alice.ID, "bob@example.com")
	require.ErrorIs(t, err, ErrRequestLimitExceeded)

	// a denied send mutates nothing
	lim, err := f.limits.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 0, lim.Remaining)
	require.Equal(t, windowStart, lim.UpdatedAt)

	pending, err := f.requests.ListPendingByReceiver(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestWindowExpiryResetsQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", "alice@example.com")
	f.addUser(t, "Bob", "bob@example.com")

	require.NoError(t, f.limits.Put(ctx, &models.RequestLimit{
		UserID:    alice.ID,
		Remaining: 0,
		UpdatedAt: f.clock.Now(),
	}))
	f.clock.Advance(61 * time.Second)

	// the reset is a side effect of the check itself, no send required
	require.NoError(t, f.limiter.Check(ctx, alice.ID))
	lim, err := f.limits.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 3, lim.Remaining)
	require.Equal(t, f.clock.Now(), lim.UpdatedAt)

	_, err = f.svc.Send(ctx, alice.ID, "bob@example.com")
	require.NoError(t, err)
	lim, err = f.limits.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 2, lim.Remaining)
}

func TestQuotaAllowsThreeSendsPerWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", "alice@example.com")
	for i := 0; i < 4; i++ {
		f.addUser(t, fmt.Sprintf("Friend %d", i), fmt.Sprintf("friend%d@example.com", i))
	}

	for i := 0; i < 3; i++ {
		_, err := f.svc.Send(ctx, alice.ID, fmt.Sprintf("friend%d@example.com", i))
		require.NoError(t, err)
	}

	lim, err := f.limits.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 0, lim.Remaining)

	_, err = f.svc.Send(ctx, alice.ID, "friend3@example.com")
	require.ErrorIs(t, err, ErrRequestLimitExceeded)
}
