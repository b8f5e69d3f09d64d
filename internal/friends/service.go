// Package friends implements the friend request lifecycle, the per-user
// request rate limit, and the friendship registry derived from accepted
// requests.
package friends

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

// friendPageSize is the fixed page size for friendship listings.
const friendPageSize = 10

// EventPublisher pushes friend events onto the audit feed. Publishing is
// best-effort; failures are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.FriendEvent) error
}

// Service drives the request state machine. Per ordered (sender, receiver)
// pair the states are NONE -> PENDING -> ACCEPTED, with rejection modeled as
// deletion back to NONE.
type Service struct {
	users       store.UserStore
	requests    store.FriendRequestStore
	friendships store.FriendshipStore
	limiter     *Limiter
	clock       store.Clock
	validate    *validator.Validate
	log         *logrus.Logger
	events      EventPublisher
}

// NewService wires the state machine. events may be nil to disable the audit
// feed; log defaults to the logrus standard logger.
func NewService(
	users store.UserStore,
	requests store.FriendRequestStore,
	friendships store.FriendshipStore,
	limiter *Limiter,
	clock store.Clock,
	log *logrus.Logger,
	events EventPublisher,
) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		users:       users,
		requests:    requests,
		friendships: friendships,
		limiter:     limiter,
		clock:       clock,
		validate:    validator.New(),
		log:         log,
		events:      events,
	}
}

// Send creates (or idempotently fetches) the pending request from senderID to
// the user behind receiverEmail. Recipient resolution runs before the limiter
// so a bad recipient never consumes quota; quota is consumed only when a new
// row was actually created, so re-sending to a pending pair is free.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, receiverEmail string) (*models.FriendRequest, error) {
	if err := s.validate.Var(receiverEmail, "required,email"); err != nil {
		return nil, ErrInvalidRecipient
	}

	receiver, err := s.users.GetByEmail(ctx, receiverEmail)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidRecipient
	}
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	if receiver.ID == senderID {
		return nil, ErrInvalidRecipient
	}

	if err := s.limiter.Check(ctx, senderID); err != nil {
		return nil, err
	}

	req, err := s.requests.Get(ctx, senderID, receiver.ID)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("fetch friend request: %w", err)
	}

	now := s.clock.Now()
	req = &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	if err := s.limiter.Consume(ctx, senderID); err != nil {
		return nil, fmt.Errorf("consume request quota: %w", err)
	}

	s.publish(ctx, models.EventRequestSent, senderID, receiver.ID)
	return req, nil
}

// ListPending returns the sender emails of all outstanding requests addressed
// to receiverID, in insertion order.
func (s *Service) ListPending(ctx context.Context, receiverID uuid.UUID) ([]string, error) {
	requests, err := s.requests.ListPendingByReceiver(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	emails := make([]string, 0, len(requests))
	for _, r := range requests {
		sender, err := s.users.GetByID(ctx, r.SenderID)
		if err != nil {
			return nil, fmt.Errorf("resolve sender %s: %w", r.SenderID, err)
		}
		emails = append(emails, sender.Email)
	}
	return emails, nil
}

// Manage accepts or rejects the pending request from the user behind
// senderEmail to receiverID. Acceptance is terminal: the request row is
// re-queried by its pending state, so a second accept finds nothing.
func (s *Service) Manage(ctx context.Context, receiverID uuid.UUID, senderEmail string, accept bool) error {
	sender, err := s.users.GetByEmail(ctx, senderEmail)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}

	if _, err := s.requests.GetPending(ctx, sender.ID, receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("fetch pending request: %w", err)
	}

	if !accept {
		if err := s.requests.Delete(ctx, sender.ID, receiverID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("delete friend request: %w", err)
		}
		s.publish(ctx, models.EventRequestRejected, receiverID, sender.ID)
		return nil
	}

	if err := s.requests.MarkAccepted(ctx, sender.ID, receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("accept friend request: %w", err)
	}
	if err := s.friendships.Create(ctx, receiverID, sender.ID); err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}

	s.publish(ctx, models.EventRequestAccepted, receiverID, sender.ID)
	return nil
}

// ListFriends returns one page of friend emails for userID. Both edge
// directions are unioned by concatenation: rows where the user accepted,
// then rows where the user was accepted. Pages are 1-based, 10 entries each.
func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID, page int) ([]string, error) {
	if page < 1 {
		page = 1
	}

	asUser, err := s.friendships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	asFriend, err := s.friendships.ListByFriend(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(asUser)+len(asFriend))
	for _, e := range asUser {
		ids = append(ids, e.FriendID)
	}
	for _, e := range asFriend {
		ids = append(ids, e.UserID)
	}

	start := (page - 1) * friendPageSize
	if start >= len(ids) {
		return []string{}, nil
	}
	end := start + friendPageSize
	if end > len(ids) {
		end = len(ids)
	}

	emails := make([]string, 0, end-start)
	for _, id := range ids[start:end] {
		friend, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve friend %s: %w", id, err)
		}
		emails = append(emails, friend.Email)
	}
	return emails, nil
}

// Search finds user emails by keyword. A syntactically valid email is looked
// up exactly; anything else matches users whose name contains every keyword
// character as a case-insensitive substring, in any position.
func (s *Service) Search(ctx context.Context, keyword string) ([]string, error) {
	if s.validate.Var(keyword, "required,email") == nil {
		user, err := s.users.GetByEmail(ctx, keyword)
		if errors.Is(err, store.ErrNotFound) {
			return []string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("search by email: %w", err)
		}
		return []string{user.Email}, nil
	}

	fragments := make([]string, 0, len(keyword))
	for _, r := range keyword {
		fragments = append(fragments, string(r))
	}
	users, err := s.users.SearchByName(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func (s *Service) publish(ctx context.Context, kind models.FriendEventKind, actor, subject uuid.UUID) {
	if s.events == nil {
		return
	}
	ev := models.FriendEvent{
		Kind:      kind,
		ActorID:   actor,
		SubjectID: subject,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithFields(logrus.Fields{
			"kind":  kind,
			"actor": actor,
		}).WithError(err).Warn("failed to publish friend event")
	}
}
