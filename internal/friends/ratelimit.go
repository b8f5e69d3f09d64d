package friends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

const (
	// requestQuota is the number of friend requests a user may send per window.
	requestQuota = 3

	// requestWindow is the interval after which the counter resets.
	requestWindow = time.Minute
)

// Limiter gates friend request creation per sender. The permission check and
// the quota consumption are deliberately split: Check never decrements, so a
// send that fails downstream of the check leaves the counter alone. The
// window reset, however, is a side effect of the check itself. Concurrent
// sends by one user are not serialized; two racing checks can both pass with
// Remaining == 1.
type Limiter struct {
	limits store.RequestLimitStore
	clock  store.Clock
}

func NewLimiter(limits store.RequestLimitStore, clock store.Clock) *Limiter {
	return &Limiter{limits: limits, clock: clock}
}

// Check reports whether userID may send a friend request now. A user with no
// limit state is unconstrained; state is first written by Consume. When the
// window has lapsed, Check resets the counter to the full quota and persists
// that reset whether or not a send follows.
func (l *Limiter) Check(ctx context.Context, userID uuid.UUID) error {
	lim, err := l.limits.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch request limit: %w", err)
	}

	now := l.clock.Now()
	if now.Sub(lim.UpdatedAt) <= requestWindow {
		if lim.Remaining > 0 {
			return nil
		}
		return ErrRequestLimitExceeded
	}

	lim.Remaining = requestQuota
	lim.UpdatedAt = now
	if err := l.limits.Put(ctx, lim); err != nil {
		return fmt.Errorf("reset request limit: %w", err)
	}
	return nil
}

// Consume records one sent request against the user's quota. The first-ever
// send creates the state with one unit already spent out of the full quota.
// Each consumption moves the window start.
func (l *Limiter) Consume(ctx context.Context, userID uuid.UUID) error {
	now := l.clock.Now()

	lim, err := l.limits.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		lim = &models.RequestLimit{
			UserID:    userID,
			Remaining: requestQuota - 1,
			UpdatedAt: now,
		}
		return l.limits.Put(ctx, lim)
	}
	if err != nil {
		return fmt.Errorf("fetch request limit: %w", err)
	}

	lim.Remaining--
	lim.UpdatedAt = now
	return l.limits.Put(ctx, lim)
}
