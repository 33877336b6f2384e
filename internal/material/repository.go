package material

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/material/mock_repository.go -package=mock_material

// ScheduleUpdate carries the cycle outcome persisted at the end of a review.
// Only these fields are written; the review count is incremented in SQL so a
// concurrent writer to unrelated columns is never clobbered.
type ScheduleUpdate struct {
	NextReviewAt   time.Time
	ReviewInterval time.Duration
	Status         Status
}

// Repository defines the material store operations the scheduler depends on.
type Repository interface {
	Get(ctx context.Context, ownerID, materialID string) (Material, error)
	Create(ctx context.Context, m *Material) error
	ListByOwner(ctx context.Context, ownerID string) ([]Material, error)
	// ListScheduled returns every material currently in scheduled status,
	// across all owners. It backs timer restoration after a process restart.
	ListScheduled(ctx context.Context) ([]Material, error)
	// ListInterrupted returns every material stuck in an intermediate cycle
	// status. A crash mid-cycle leaves the row there; only a boot-time sweep
	// can bring it back into the scheduling loop.
	ListInterrupted(ctx context.Context) ([]Material, error)
	UpdateSchedule(ctx context.Context, ownerID, materialID string, update ScheduleUpdate) error
	UpdateStatus(ctx context.Context, ownerID, materialID string, status Status) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Get returns a material by owner and id, or ErrNotFound.
func (r *DBRepository) Get(ctx context.Context, ownerID, materialID string) (Material, error) {
	var m Material
	err := r.db.GetContext(ctx, &m,
		"SELECT * FROM materials WHERE owner_id = ? AND id = ?",
		ownerID, materialID)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	if err != nil {
		return Material{}, fmt.Errorf("db.GetContext(material) > %w", err)
	}
	return m, nil
}

// Create inserts a new material, assigning an id when it is empty.
func (r *DBRepository) Create(ctx context.Context, m *Material) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("material.Validate() > %w", err)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusScheduled
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO materials (id, owner_id, kind, content, question, answer, reveal_answer, source,
			next_review_at, review_interval_seconds, review_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.Kind, m.Content, m.Question, m.Answer, m.RevealAnswer, m.Source,
		m.NextReviewAt, m.ReviewIntervalSeconds, m.ReviewCount, m.Status); err != nil {
		return fmt.Errorf("db.ExecContext(insert material) > %w", err)
	}
	return nil
}

// ListByOwner returns all materials belonging to an owner.
func (r *DBRepository) ListByOwner(ctx context.Context, ownerID string) ([]Material, error) {
	var materials []Material
	if err := r.db.SelectContext(ctx, &materials,
		"SELECT * FROM materials WHERE owner_id = ? ORDER BY created_at, id",
		ownerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(materials by owner) > %w", err)
	}
	return materials, nil
}

// ListScheduled returns all materials waiting for their next review.
func (r *DBRepository) ListScheduled(ctx context.Context) ([]Material, error) {
	var materials []Material
	if err := r.db.SelectContext(ctx, &materials,
		"SELECT * FROM materials WHERE status = ? ORDER BY next_review_at",
		StatusScheduled); err != nil {
		return nil, fmt.Errorf("db.SelectContext(scheduled materials) > %w", err)
	}
	return materials, nil
}

// ListInterrupted returns all materials whose last cycle never committed.
func (r *DBRepository) ListInterrupted(ctx context.Context) ([]Material, error) {
	var materials []Material
	if err := r.db.SelectContext(ctx, &materials,
		"SELECT * FROM materials WHERE status IN (?, ?, ?) ORDER BY next_review_at",
		StatusPublished, StatusAwaitingReply, StatusCompleted); err != nil {
		return nil, fmt.Errorf("db.SelectContext(interrupted materials) > %w", err)
	}
	return materials, nil
}

// UpdateSchedule persists the outcome of one review cycle as a field-level
// update. review_count is incremented on the database side.
func (r *DBRepository) UpdateSchedule(ctx context.Context, ownerID, materialID string, update ScheduleUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE materials
		SET next_review_at = ?, review_interval_seconds = ?, review_count = review_count + 1, status = ?
		WHERE owner_id = ? AND id = ?`,
		update.NextReviewAt, int64(update.ReviewInterval/time.Second), update.Status,
		ownerID, materialID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update material schedule) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus records a status transition within the current cycle.
func (r *DBRepository) UpdateStatus(ctx context.Context, ownerID, materialID string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE materials SET status = ? WHERE owner_id = ? AND id = ?",
		status, ownerID, materialID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update material status) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
