package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type mockExportProgressReader struct {
	byStudent map[string][]models.StudentProgress
	byLE      map[string][]models.StudentProgress
}

func (m *mockExportProgressReader) ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error) {
	return m.byStudent[studentID], nil
}

func (m *mockExportProgressReader) ListByLearningExperience(ctx context.Context, leID string) ([]models.StudentProgress, error) {
	return m.byLE[leID], nil
}

type mockExportStudentReader struct {
	students map[string]*models.Student
}

func (m *mockExportStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func exportFixture() *ExportService {
	lastSeen := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	progress := &mockExportProgressReader{
		byLE: map[string][]models.StudentProgress{
			"le1": {
				{StudentID: "s1", LearningExperienceID: "le1", MasteryLevel: 3, EvidenceCount: 5, Trend: models.TrendImproving, LastEvidenceDate: &lastSeen},
				{StudentID: "s2", LearningExperienceID: "le1", MasteryLevel: 1, EvidenceCount: 0, Trend: models.TrendStable},
			},
		},
		byStudent: map[string][]models.StudentProgress{
			"s1": {
				{StudentID: "s1", LearningExperienceID: "le1", MasteryLevel: 3, EvidenceCount: 5, Trend: models.TrendImproving, LastEvidenceDate: &lastSeen},
			},
		},
	}
	students := &mockExportStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", FirstName: "Mia", LastName: "Chen"},
	}}
	le := experienceWithCriteria("le1", "identify halves")
	le.UnitNumber = 2
	le.ExperienceNumber = 3
	catalog := &mockCriteriaCatalog{experiences: map[string]*models.LearningExperience{"le1": le}}
	return NewExportService(progress, students, catalog, nil, nil, zap.NewNop())
}

func TestExportClassProgressCSV(t *testing.T) {
	svc := exportFixture()

	result, err := svc.ClassProgress(context.Background(), "le1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "class-progress-u2-le3.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Mastery Level,Evidence Count,Trend,Last Evidence", lines[0])
	assert.Equal(t, "Mia Chen,3,5,improving,2026-04-20", lines[1])
	// unknown student falls back to id, no last-evidence date yet
	assert.Equal(t, "s2,1,0,stable,", lines[2])
}

func TestExportClassProgressPDF(t *testing.T) {
	svc := exportFixture()

	result, err := svc.ClassProgress(context.Background(), "le1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "class-progress-u2-le3.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportStudentProgressCSV(t *testing.T) {
	svc := exportFixture()

	result, err := svc.StudentProgress(context.Background(), "s1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "student-progress-s1.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Learning Experience,Mastery Level,Evidence Count,Trend,Last Evidence", lines[0])
	assert.Equal(t, "Unit 2 LE 3: Fractions,3,5,improving,2026-04-20", lines[1])
}

func TestExportStudentNotFound(t *testing.T) {
	svc := exportFixture()

	_, err := svc.StudentProgress(context.Background(), "s-missing", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := exportFixture()

	_, err := svc.ClassProgress(context.Background(), "le1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
