package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/opencircle/socialgraph/internal/models"
)

func TestMemoryFriendRequestStoreLifecycle(t *testing.T) {
	s := NewMemoryFriendRequestStore()
	ctx := context.Background()
	sender, receiver := uuid.New(), uuid.New()
	now := time.Now()

	_, err := s.Get(ctx, sender, receiver)
	require.ErrorIs(t, err, ErrNotFound)

	req := &models.FriendRequest{SenderID: sender, ReceiverID: receiver, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Create(ctx, req))
	// duplicate pair is a silent no-op, matching ON CONFLICT DO NOTHING
	require.NoError(t, s.Create(ctx, &models.FriendRequest{SenderID: sender, ReceiverID: receiver}))

	pending, err := s.ListPendingByReceiver(ctx, receiver)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.MarkAccepted(ctx, sender, receiver))
	_, err = s.GetPending(ctx, sender, receiver)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.MarkAccepted(ctx, sender, receiver), ErrNotFound)

	got, err := s.Get(ctx, sender, receiver)
	require.NoError(t, err)
	require.True(t, got.Accepted)

	require.NoError(t, s.Delete(ctx, sender, receiver))
	require.ErrorIs(t, s.Delete(ctx, sender, receiver), ErrNotFound)
}

func TestMemoryFriendshipStoreIdempotentCreate(t *testing.T) {
	s := NewMemoryFriendshipStore()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.Create(ctx, a, b))
	require.NoError(t, s.Create(ctx, a, b))

	edges, err := s.ListByUser(ctx, a)
	require.NoError(t, err)
	require.Len(t, edges, 1)

	reverse, err := s.ListByFriend(ctx, b)
	require.NoError(t, err)
	require.Len(t, reverse, 1)
}
