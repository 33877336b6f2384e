package x

import (
	"errors"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast"
)

// retryable reports whether a publish error should trigger another attempt.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, broadcast.ErrRateLimited)
}
