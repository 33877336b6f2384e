// Package material provides learning material domain models and the
// repository backing the review schedule.
package material

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a material does not exist for an owner.
var ErrNotFound = errors.New("material not found")

// Kind discriminates the material variants.
type Kind string

const (
	KindQuote    Kind = "quote"
	KindQuestion Kind = "question"
)

// Status tracks where a material is within its current review cycle.
type Status string

const (
	StatusScheduled     Status = "scheduled"
	StatusPublished     Status = "published"
	StatusAwaitingReply Status = "awaiting_reply"
	StatusCompleted     Status = "completed"
)

// Material is the unit of review. Quote materials use Content; question
// materials use Question and Answer. The kind column discriminates which
// fields are meaningful.
type Material struct {
	ID           string    `db:"id"`
	OwnerID      string    `db:"owner_id"`
	Kind         Kind      `db:"kind"`
	Content      string    `db:"content"`
	Question     string    `db:"question"`
	Answer       string    `db:"answer"`
	RevealAnswer bool      `db:"reveal_answer"`
	Source       string    `db:"source"`
	NextReviewAt time.Time `db:"next_review_at"`
	// ReviewIntervalSeconds is the current spaced-repetition gap. Strictly
	// positive; doubles after each completed cycle and resets to the floor
	// after an incorrect answer.
	ReviewIntervalSeconds int64     `db:"review_interval_seconds"`
	ReviewCount           int       `db:"review_count"`
	Status                Status    `db:"status"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// ReviewInterval returns the current review interval as a duration.
func (m Material) ReviewInterval() time.Duration {
	return time.Duration(m.ReviewIntervalSeconds) * time.Second
}

// PostText returns the text to publish when this material fires.
func (m Material) PostText() (string, error) {
	switch m.Kind {
	case KindQuote:
		if m.Source != "" {
			return fmt.Sprintf("%s\n— %s", m.Content, m.Source), nil
		}
		return m.Content, nil
	case KindQuestion:
		return m.Question, nil
	default:
		return "", fmt.Errorf("unknown material kind %q", m.Kind)
	}
}

// Validate checks that the variant-specific required fields are present.
func (m Material) Validate() error {
	if m.OwnerID == "" {
		return errors.New("owner id is required")
	}
	switch m.Kind {
	case KindQuote:
		if m.Content == "" {
			return errors.New("quote content is required")
		}
	case KindQuestion:
		if m.Question == "" {
			return errors.New("question text is required")
		}
		if m.Answer == "" {
			return errors.New("question answer is required")
		}
	default:
		return fmt.Errorf("unknown material kind %q", m.Kind)
	}
	return nil
}
