package friends

import "errors"

var (
	// ErrInvalidRecipient means the recipient email is malformed, resolves to
	// no user, or points back at the sender.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrRequestLimitExceeded means the sender's quota is exhausted within the
	// current window.
	ErrRequestLimitExceeded = errors.New("friend request limit exceeded")

	// ErrRequestNotFound means no pending request exists for the pair.
	ErrRequestNotFound = errors.New("friend request not found")
)
