package models

import "github.com/google/uuid"

// FriendEventKind labels a friend-graph mutation for the audit feed.
type FriendEventKind string

const (
	EventRequestSent     FriendEventKind = "request_sent"
	EventRequestAccepted FriendEventKind = "request_accepted"
	EventRequestRejected FriendEventKind = "request_rejected"
)

// FriendEvent holds the minimal info the audit consumer needs to persist
// one friend-graph mutation.
type FriendEvent struct {
	Kind      FriendEventKind `json:"kind"`
	ActorID   uuid.UUID       `json:"actor_id"`
	SubjectID uuid.UUID       `json:"subject_id"`
	Timestamp int64           `json:"timestamp"`
}
