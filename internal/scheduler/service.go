package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

// SubmitQuestionParams holds the intake fields for a question material.
type SubmitQuestionParams struct {
	Question     string
	Answer       string
	Source       string
	RevealAnswer bool
}

// SubmitQuoteParams holds the intake fields for a quote material.
type SubmitQuoteParams struct {
	Content string
	Source  string
}

// SubmitQuestion creates a question material due immediately and arms its
// first review. Returns the new material id.
func (s *Scheduler) SubmitQuestion(ctx context.Context, ownerID string, params SubmitQuestionParams) (string, error) {
	return s.submit(ctx, &material.Material{
		OwnerID:      ownerID,
		Kind:         material.KindQuestion,
		Question:     params.Question,
		Answer:       params.Answer,
		Source:       params.Source,
		RevealAnswer: params.RevealAnswer,
	})
}

// SubmitQuote creates a quote material due immediately and arms its first
// review. Returns the new material id.
func (s *Scheduler) SubmitQuote(ctx context.Context, ownerID string, params SubmitQuoteParams) (string, error) {
	return s.submit(ctx, &material.Material{
		OwnerID: ownerID,
		Kind:    material.KindQuote,
		Content: params.Content,
		Source:  params.Source,
	})
}

func (s *Scheduler) submit(ctx context.Context, m *material.Material) (string, error) {
	m.Status = material.StatusScheduled
	m.NextReviewAt = s.nowIn()
	m.ReviewIntervalSeconds = int64(s.opts.FloorInterval / time.Second)

	if err := s.materials.Create(ctx, m); err != nil {
		return "", fmt.Errorf("materials.Create() > %w", err)
	}
	s.logger.Info("material submitted",
		"owner_id", m.OwnerID,
		"material_id", m.ID,
		"kind", m.Kind,
	)

	// Due now; Arm clamps this to the minimum delay.
	s.Arm(m.OwnerID, m.ID, m.NextReviewAt)
	return m.ID, nil
}

// ListMaterials returns all of an owner's materials. Read-only passthrough
// to the store.
func (s *Scheduler) ListMaterials(ctx context.Context, ownerID string) ([]material.Material, error) {
	materials, err := s.materials.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("materials.ListByOwner() > %w", err)
	}
	return materials, nil
}

// Restore re-arms a timer for every scheduled material and recovers
// materials whose cycle was interrupted by a crash. Called once at startup so
// pending reviews survive a process restart. Recovery must not run while
// cycles are in flight: an intermediate status then means a live cycle, not
// a stuck one.
func (s *Scheduler) Restore(ctx context.Context) error {
	interrupted, err := s.materials.ListInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("materials.ListInterrupted() > %w", err)
	}
	for _, m := range interrupted {
		if err := s.materials.UpdateStatus(ctx, m.OwnerID, m.ID, material.StatusScheduled); err != nil {
			return fmt.Errorf("materials.UpdateStatus(scheduled) > %w", err)
		}
		// The stored fire time predates the interrupted cycle, so Arm
		// clamps it and the cycle re-runs promptly.
		s.Arm(m.OwnerID, m.ID, m.NextReviewAt)
		s.logger.Info("recovered interrupted review cycle",
			"owner_id", m.OwnerID,
			"material_id", m.ID,
			"status", m.Status,
		)
	}

	if err := s.Rescan(ctx); err != nil {
		return err
	}
	s.logger.Info("restored pending review timers", "recovered", len(interrupted))
	return nil
}

// Rescan arms a timer for every scheduled material that is not already
// armed or mid-cycle. The serve loop calls this periodically so materials
// submitted out of process start firing without a restart.
func (s *Scheduler) Rescan(ctx context.Context) error {
	materials, err := s.materials.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("materials.ListScheduled() > %w", err)
	}
	armed := 0
	for _, m := range materials {
		if s.ArmIdle(m.OwnerID, m.ID, m.NextReviewAt) {
			armed++
		}
	}
	s.logger.Debug("rescanned scheduled materials", "scheduled", len(materials), "armed", armed)
	return nil
}
