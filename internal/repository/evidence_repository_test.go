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

func newEvidenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func evidenceRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "teacher_id", "student_id", "learning_experience_id", "lesson_id",
		"observation_date", "observation_text", "mastery_level", "success_criteria_ids",
		"attachment_url", "notes", "created_at", "updated_at"})
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range ids {
		rows.AddRow(id, "t1", "s1", "le1", nil, base.AddDate(0, 0, -i), "observed", 3, []byte(`["0"]`), nil, nil, base, base)
	}
	return rows
}

func TestEvidenceRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectExec("INSERT INTO evidence").
		WillReturnResult(sqlmock.NewResult(1, 1))

	evidence := &models.Evidence{
		TeacherID:            "t1",
		StudentID:            "s1",
		LearningExperienceID: "le1",
		ObservationDate:      time.Now().UTC(),
		ObservationText:      "observed",
		MasteryLevel:         3,
	}
	require.NoError(t, repo.Create(context.Background(), evidence))
	assert.NotEmpty(t, evidence.ID)
	assert.Equal(t, []byte("[]"), []byte(evidence.SuccessCriteriaIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryListByPairOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM evidence WHERE student_id = \$1 AND learning_experience_id = \$2 ORDER BY observation_date DESC`).
		WithArgs("s1", "le1").
		WillReturnRows(evidenceRows("ev1", "ev2"))

	list, err := repo.ListByStudentAndLE(context.Background(), "s1", "le1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].ObservationDate.After(list[1].ObservationDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryListByStudentOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM evidence WHERE student_id = \$1 ORDER BY observation_date DESC`).
		WithArgs("s1").
		WillReturnRows(evidenceRows("ev1"))

	list, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectExec(`DELETE FROM evidence WHERE id = \$1`).
		WithArgs("ev1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "ev1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
