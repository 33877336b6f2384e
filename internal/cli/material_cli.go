// Package cli implements the one-shot material intake and inspection
// commands behind the xlearn binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

// MaterialCLI submits and lists study materials directly against the store.
// A submitted row is due immediately, so the serve process arms it on its
// next rescan.
type MaterialCLI struct {
	materials     material.Repository
	floorInterval time.Duration
	now           func() time.Time
	stdoutWriter  io.Writer
	bold          *color.Color
	faint         *color.Color
}

// NewMaterialCLI creates a new material CLI writing to stdout.
func NewMaterialCLI(materials material.Repository, floorInterval time.Duration) *MaterialCLI {
	return &MaterialCLI{
		materials:     materials,
		floorInterval: floorInterval,
		now:           time.Now,
		stdoutWriter:  os.Stdout,
		bold:          color.New(color.Bold),
		faint:         color.New(color.Faint),
	}
}

// QuestionParams holds the intake fields for one question material.
type QuestionParams struct {
	Question     string
	Answer       string
	Source       string
	RevealAnswer bool
}

// QuoteParams holds the intake fields for one quote material.
type QuoteParams struct {
	Content string
	Source  string
}

// SubmitQuestion stores a new question material due immediately.
func (c *MaterialCLI) SubmitQuestion(ctx context.Context, ownerID string, params QuestionParams) error {
	return c.submit(ctx, &material.Material{
		OwnerID:      ownerID,
		Kind:         material.KindQuestion,
		Question:     params.Question,
		Answer:       params.Answer,
		Source:       params.Source,
		RevealAnswer: params.RevealAnswer,
	})
}

// SubmitQuote stores a new quote material due immediately.
func (c *MaterialCLI) SubmitQuote(ctx context.Context, ownerID string, params QuoteParams) error {
	return c.submit(ctx, &material.Material{
		OwnerID: ownerID,
		Kind:    material.KindQuote,
		Content: params.Content,
		Source:  params.Source,
	})
}

func (c *MaterialCLI) submit(ctx context.Context, m *material.Material) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("m.Validate() > %w", err)
	}

	m.Status = material.StatusScheduled
	m.NextReviewAt = c.now()
	m.ReviewIntervalSeconds = int64(c.floorInterval / time.Second)

	if err := c.materials.Create(ctx, m); err != nil {
		return fmt.Errorf("materials.Create() > %w", err)
	}

	fmt.Fprintf(c.stdoutWriter, "Created %s material %s\n", m.Kind, m.ID)
	return nil
}

// List prints an owner's materials, one block per material. A non-empty
// status limits the output to materials currently in that status.
func (c *MaterialCLI) List(ctx context.Context, ownerID string, status material.Status) error {
	allMaterials, err := c.materials.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("materials.ListByOwner() > %w", err)
	}

	materials := make([]material.Material, 0, len(allMaterials))
	for _, m := range allMaterials {
		if status != "" && m.Status != status {
			continue
		}
		materials = append(materials, m)
	}
	if len(materials) == 0 {
		fmt.Fprintln(c.stdoutWriter, "No materials found.")
		return nil
	}

	for _, m := range materials {
		text, err := m.PostText()
		if err != nil {
			return fmt.Errorf("m.PostText() > %w", err)
		}
		c.bold.Fprintf(c.stdoutWriter, "[%s] %s\n", m.Kind, text)
		if m.Kind == material.KindQuestion {
			fmt.Fprintf(c.stdoutWriter, "  answer: %s\n", m.Answer)
		}
		c.faint.Fprintf(c.stdoutWriter, "  id=%s status=%s reviews=%d next=%s interval=%s\n",
			m.ID,
			m.Status,
			m.ReviewCount,
			m.NextReviewAt.Format(time.RFC3339),
			m.ReviewInterval(),
		)
	}
	fmt.Fprintf(c.stdoutWriter, "%d materials\n", len(materials))
	return nil
}
