// Package inference defines the grading capability the scheduler delegates
// free-text answer judgment to.
package inference

import (
	"context"
	"errors"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_grader.go -package=mock_inference

// DefaultMaxRetryAttempts is the default number of retries for grading calls.
const DefaultMaxRetryAttempts = 3

// ErrMalformedVerdict indicates the judgment service returned output that
// could not be parsed into a verdict. Callers fall back to the default
// (non-incorrect) scheduling path rather than blocking the cycle.
var ErrMalformedVerdict = errors.New("malformed grading verdict")

// GradeRequest holds one graded answer exchange.
type GradeRequest struct {
	Question        string
	ExpectedAnswer  string
	SubmittedAnswer string
}

// GradeResult is the verdict plus the feedback text published back to the
// replier.
type GradeResult struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// Grader judges a free-text answer against the expected answer.
type Grader interface {
	Grade(ctx context.Context, params GradeRequest) (GradeResult, error)
}
