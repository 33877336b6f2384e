package openai

import (
	"errors"
	"strings"

	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
)

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// A verdict that failed to parse is final per the fail-closed contract;
	// the caller decides what to do with it.
	if errors.Is(err, inference.ErrMalformedVerdict) {
		return false
	}

	// Retry on network-related errors
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}
