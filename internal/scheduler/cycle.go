package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

// Fire runs one full review cycle for a material. The material is reloaded
// from the store first; the copy used to arm this timer may be stale. Every
// failure path returns without re-arming, so an aborted material stays
// parked until an operator intervenes.
func (s *Scheduler) Fire(ctx context.Context, ownerID, materialID string) error {
	logger := s.logger.With("owner_id", ownerID, "material_id", materialID)

	item, err := s.materials.Get(ctx, ownerID, materialID)
	if err != nil {
		return fmt.Errorf("materials.Get() > %w", err)
	}
	cred, err := s.credentials.Resolve(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("credentials.Resolve() > %w", err)
	}
	text, err := item.PostText()
	if err != nil {
		return fmt.Errorf("item.PostText() > %w", err)
	}

	handle, err := s.publisher.Publish(ctx, cred, text, "")
	if err != nil {
		return fmt.Errorf("publisher.Publish() > %w", err)
	}
	logger.Info("published material", "kind", item.Kind, "handle", handle)

	if err := s.materials.UpdateStatus(ctx, ownerID, materialID, material.StatusPublished); err != nil {
		return fmt.Errorf("materials.UpdateStatus(published) > %w", err)
	}

	fireTime := s.nowIn()
	interval := item.ReviewInterval()
	if interval <= 0 {
		interval = s.opts.FloorInterval
	}

	// Default path: the gap grows by doubling. An incorrect answer below
	// replaces this with an immediate short-interval re-exposure.
	update := material.ScheduleUpdate{
		NextReviewAt:   fireTime.Add(interval),
		ReviewInterval: interval * 2,
		Status:         material.StatusScheduled,
	}

	switch item.Kind {
	case material.KindQuestion:
		incorrect, err := s.runReplyWindow(ctx, logger, cred, item, handle)
		if err != nil {
			return err
		}
		if incorrect {
			update.NextReviewAt = s.nowIn()
			update.ReviewInterval = s.opts.FloorInterval
		}
		if item.RevealAnswer {
			s.revealAnswer(ctx, logger, cred, item, handle)
		}
	case material.KindQuote:
		// Quotes have nothing to wait for.
	default:
		return fmt.Errorf("unknown material kind %q", item.Kind)
	}

	if err := s.materials.UpdateStatus(ctx, ownerID, materialID, material.StatusCompleted); err != nil {
		return fmt.Errorf("materials.UpdateStatus(completed) > %w", err)
	}
	if err := s.materials.UpdateSchedule(ctx, ownerID, materialID, update); err != nil {
		return fmt.Errorf("materials.UpdateSchedule() > %w", err)
	}
	logger.Info("review cycle committed",
		"next_review_at", update.NextReviewAt,
		"review_interval", update.ReviewInterval,
	)

	s.Arm(ownerID, materialID, update.NextReviewAt)
	return nil
}

// runReplyWindow waits for at most one reply to the published question and
// grades it. It reports whether the cycle should take the incorrect path.
// Listener and grader failures are logged and downgraded to "no verdict" so
// the cycle always makes forward progress.
func (s *Scheduler) runReplyWindow(
	ctx context.Context,
	logger *slog.Logger,
	cred identity.Credential,
	item material.Material,
	handle string,
) (bool, error) {
	if err := s.materials.UpdateStatus(ctx, item.OwnerID, item.ID, material.StatusAwaitingReply); err != nil {
		return false, fmt.Errorf("materials.UpdateStatus(awaiting_reply) > %w", err)
	}

	deadline := s.nowIn().Add(s.opts.ReplyWindow)
	reply, ok, err := s.listener.AwaitReply(ctx, handle, deadline)
	if err != nil {
		logger.Warn("reply listener failed, treating as no reply", "handle", handle, "error", err)
		return false, nil
	}
	if !ok {
		logger.Info("no reply before deadline", "handle", handle)
		return false, nil
	}

	verdict, err := s.grader.Grade(ctx, inference.GradeRequest{
		Question:        item.Question,
		ExpectedAnswer:  item.Answer,
		SubmittedAnswer: reply,
	})
	if err != nil {
		logger.Warn("grading failed, proceeding without a verdict", "handle", handle, "error", err)
		return false, nil
	}
	logger.Info("graded reply", "handle", handle, "correct", verdict.Correct)

	if _, err := s.publisher.Publish(ctx, cred, verdict.Feedback, handle); err != nil {
		logger.Warn("failed to publish feedback", "handle", handle, "error", err)
	}

	return !verdict.Correct, nil
}

// revealAnswer posts the expected answer as a reply once the reply window
// has concluded. Best effort: a failure never aborts the cycle.
func (s *Scheduler) revealAnswer(
	ctx context.Context,
	logger *slog.Logger,
	cred identity.Credential,
	item material.Material,
	handle string,
) {
	if _, err := s.publisher.Publish(ctx, cred, item.Answer, handle); err != nil {
		logger.Warn("failed to publish answer reveal", "handle", handle, "error", err)
	}
}
