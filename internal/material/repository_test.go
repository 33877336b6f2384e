package material

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materialColumns() []string {
	return []string{
		"id", "owner_id", "kind", "content", "question", "answer", "reveal_answer", "source",
		"next_review_at", "review_interval_seconds", "review_count", "status", "created_at", "updated_at",
	}
}

func newTestRepository(t *testing.T) (*DBRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDBRepository(sqlx.NewDb(db, "mysql")), mock
}

func TestDBRepository_Get(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
		want      Material
	}{
		{
			name: "returns material",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(materialColumns()).
					AddRow("m-1", "owner-1", "question", "", "What is 1+1?", "2", false, "",
						now, 10800, 2, "scheduled", now, now)
				mock.ExpectQuery("SELECT \\* FROM materials WHERE owner_id = \\? AND id = \\?").
					WithArgs("owner-1", "m-1").
					WillReturnRows(rows)
			},
			want: Material{
				ID: "m-1", OwnerID: "owner-1", Kind: KindQuestion,
				Question: "What is 1+1?", Answer: "2",
				NextReviewAt: now, ReviewIntervalSeconds: 10800, ReviewCount: 2,
				Status: StatusScheduled, CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "missing material",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM materials WHERE owner_id = \\? AND id = \\?").
					WithArgs("owner-1", "m-gone").
					WillReturnRows(sqlmock.NewRows(materialColumns()))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM materials WHERE owner_id = \\? AND id = \\?").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: fmt.Errorf("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			materialID := tt.want.ID
			if materialID == "" {
				materialID = "m-gone"
			}
			got, err := repo.Get(context.Background(), "owner-1", materialID)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		material  Material
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "inserts quote and assigns id",
			material: Material{
				OwnerID:               "owner-1",
				Kind:                  KindQuote,
				Content:               "Stay hungry, stay foolish.",
				Source:                "Steve Jobs",
				ReviewIntervalSeconds: 10800,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO materials").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "question without answer is rejected",
			material: Material{
				OwnerID:  "owner-1",
				Kind:     KindQuestion,
				Question: "What is 1+1?",
			},
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   "question answer is required",
		},
		{
			name: "db error",
			material: Material{
				OwnerID: "owner-1",
				Kind:    KindQuote,
				Content: "text",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO materials").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), &tt.material)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.material.ID)
			assert.Equal(t, StatusScheduled, tt.material.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_ListScheduled(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo, mock := newTestRepository(t)
	rows := sqlmock.NewRows(materialColumns()).
		AddRow("m-1", "owner-1", "quote", "a quote", "", "", false, "",
			now, 10800, 0, "scheduled", now, now).
		AddRow("m-2", "owner-2", "question", "", "Q?", "A", true, "",
			now.Add(time.Hour), 21600, 3, "scheduled", now, now)
	mock.ExpectQuery("SELECT \\* FROM materials WHERE status = \\? ORDER BY next_review_at").
		WithArgs(StatusScheduled).
		WillReturnRows(rows)

	got, err := repo.ListScheduled(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-1", got[0].ID)
	assert.Equal(t, KindQuote, got[0].Kind)
	assert.Equal(t, "owner-2", got[1].OwnerID)
	assert.Equal(t, 21600, int(got[1].ReviewIntervalSeconds))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_ListInterrupted(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo, mock := newTestRepository(t)
	rows := sqlmock.NewRows(materialColumns()).
		AddRow("m-1", "owner-1", "question", "", "Q?", "A", false, "",
			now, 10800, 2, "awaiting_reply", now, now)
	mock.ExpectQuery("SELECT \\* FROM materials WHERE status IN \\(\\?, \\?, \\?\\) ORDER BY next_review_at").
		WithArgs(StatusPublished, StatusAwaitingReply, StatusCompleted).
		WillReturnRows(rows)

	got, err := repo.ListInterrupted(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m-1", got[0].ID)
	assert.Equal(t, StatusAwaitingReply, got[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_UpdateSchedule(t *testing.T) {
	fireTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "updates only schedule fields and increments count in SQL",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE materials\\s+SET next_review_at = \\?, review_interval_seconds = \\?, review_count = review_count \\+ 1, status = \\?\\s+WHERE owner_id = \\? AND id = \\?").
					WithArgs(fireTime.Add(3*time.Hour), int64(21600), StatusScheduled, "owner-1", "m-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing material",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE materials").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			err := repo.UpdateSchedule(context.Background(), "owner-1", "m-1", ScheduleUpdate{
				NextReviewAt:   fireTime.Add(3 * time.Hour),
				ReviewInterval: 6 * time.Hour,
				Status:         StatusScheduled,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_UpdateStatus(t *testing.T) {
	repo, mock := newTestRepository(t)
	mock.ExpectExec("UPDATE materials SET status = \\? WHERE owner_id = \\? AND id = \\?").
		WithArgs(StatusPublished, "owner-1", "m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "owner-1", "m-1", StatusPublished))
	assert.NoError(t, mock.ExpectationsWereMet())
}
