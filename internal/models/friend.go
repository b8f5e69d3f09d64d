package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest is a directed invitation from Sender to Receiver.
// At most one row exists per ordered (sender, receiver) pair; a rejected
// request is deleted outright, so the pair can be requested again.
type FriendRequest struct {
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Friendship is a single directed edge materialized when a request is
// accepted, with UserID = receiver and FriendID = sender. The relation is
// symmetric only through query-time union of both directions.
type Friendship struct {
	UserID   uuid.UUID `json:"user_id"`
	FriendID uuid.UUID `json:"friend_id"`
}

// RequestLimit tracks the outgoing friend-request quota for one user.
// UpdatedAt marks the start of the current window; it moves whenever the
// counter is reset or consumed.
type RequestLimit struct {
	UserID    uuid.UUID `json:"user_id"`
	Remaining int       `json:"remaining"`
	UpdatedAt time.Time `json:"updated_at"`
}
