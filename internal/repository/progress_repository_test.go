package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbook-app/planbook-api/internal/models"
)

func newProgressMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProgressRepositoryUpsertFillsDefaults(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec(`INSERT INTO student_progress .+ ON CONFLICT \(student_id, learning_experience_id\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	progress := &models.StudentProgress{
		StudentID:            "s1",
		LearningExperienceID: "le1",
		MasteryLevel:         3,
		EvidenceCount:        5,
		Trend:                models.TrendImproving,
	}
	require.NoError(t, repo.Upsert(context.Background(), progress))
	assert.NotEmpty(t, progress.ID)
	assert.False(t, progress.CreatedAt.IsZero())
	assert.Equal(t, []byte("{}"), []byte(progress.SuccessCriteriaStatus))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryFindByPair(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "learning_experience_id", "mastery_level",
		"success_criteria_status", "evidence_count", "trend", "last_evidence_date", "created_at", "updated_at"}).
		AddRow("p1", "s1", "le1", 3, []byte(`{"0":"met"}`), 5, "improving", now, now, now)
	mock.ExpectQuery(`SELECT .+ FROM student_progress WHERE student_id = \$1 AND learning_experience_id = \$2`).
		WithArgs("s1", "le1").
		WillReturnRows(rows)

	progress, err := repo.FindByPair(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, 3, progress.MasteryLevel)
	assert.Equal(t, models.TrendImproving, progress.Trend)
	assert.Equal(t, map[string]string{"0": "met"}, progress.CriteriaStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListByLearningExperience(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "learning_experience_id", "mastery_level",
		"success_criteria_status", "evidence_count", "trend", "last_evidence_date", "created_at", "updated_at"}).
		AddRow("p1", "s1", "le1", 2, []byte(`{}`), 1, "stable", nil, now, now).
		AddRow("p2", "s2", "le1", 4, []byte(`{}`), 7, "improving", now, now, now)
	mock.ExpectQuery(`SELECT .+ FROM student_progress WHERE learning_experience_id = \$1 ORDER BY updated_at DESC`).
		WithArgs("le1").
		WillReturnRows(rows)

	list, err := repo.ListByLearningExperience(context.Background(), "le1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].LastEvidenceDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
