// Package broadcast abstracts the one-way channel study materials are
// published to, and the reply stream attached to it.
package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
)

//go:generate mockgen -source=interface.go -destination=../mocks/broadcast/mock_broadcast.go -package=mock_broadcast

var (
	// ErrAuth indicates the owner's credential was rejected. Terminal for
	// that identity until it is re-authorized.
	ErrAuth = errors.New("broadcast authentication failed")
	// ErrRateLimited indicates the channel rejected the post for rate
	// limiting. Retryable after a cooldown.
	ErrRateLimited = errors.New("broadcast rate limited")
	// ErrListener indicates the reply stream failed mid-listen. The caller
	// treats it like a timeout, but it is logged distinctly.
	ErrListener = errors.New("reply listener failed")
)

// Publisher posts content on behalf of a specific identity and returns an
// opaque handle usable for reply addressing.
type Publisher interface {
	Publish(ctx context.Context, cred identity.Credential, text string, inReplyTo string) (handle string, err error)
}

// ReplyListener surfaces at most one reply to a published content handle.
// ok is false when the deadline expires without a matching reply. A non-nil
// error wraps ErrListener and is equivalent to a timeout for scheduling
// purposes. Only the first matching reply is consumed.
type ReplyListener interface {
	AwaitReply(ctx context.Context, handle string, deadline time.Time) (reply string, ok bool, err error)
}
