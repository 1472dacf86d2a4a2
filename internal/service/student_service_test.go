package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "s-new"
	}
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	var list []models.Student
	for _, s := range m.students {
		list = append(list, s)
	}
	return list, len(list), nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Deactivate(ctx context.Context, id string) error {
	s := m.students[id]
	s.Active = false
	m.students[id] = s
	return nil
}

func newStudentFixture(repo *mockStudentRepo) *StudentService {
	return NewStudentService(repo, validator.New(), zap.NewNop())
}

func TestStudentCreateDefaultsActive(t *testing.T) {
	svc := newStudentFixture(&mockStudentRepo{})

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FirstName: "Mia",
		LastName:  "Chen",
		YearLevel: 4,
	})
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.Equal(t, "Mia Chen", student.FullName())
}

func TestStudentCreateRejectsYearLevelOutOfRange(t *testing.T) {
	svc := newStudentFixture(&mockStudentRepo{})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		FirstName: "Mia",
		LastName:  "Chen",
		YearLevel: 13,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentListNormalisesPagination(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FirstName: "Mia", LastName: "Chen", Active: true},
	}}
	svc := newStudentFixture(repo)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, Limit: 0})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.Limit)
}

func TestStudentUpdatePartial(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FirstName: "Mia", LastName: "Chen", YearLevel: 4, Active: true},
	}}
	svc := newStudentFixture(repo)

	year := 5
	student, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{YearLevel: &year})
	require.NoError(t, err)
	assert.Equal(t, 5, student.YearLevel)
	assert.Equal(t, "Mia", student.FirstName)
}

func TestStudentDeactivateKeepsRecord(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FirstName: "Mia", LastName: "Chen", Active: true},
	}}
	svc := newStudentFixture(repo)

	require.NoError(t, svc.Deactivate(context.Background(), "s1"))
	assert.False(t, repo.students["s1"].Active)
}

func TestStudentGetNotFound(t *testing.T) {
	svc := newStudentFixture(&mockStudentRepo{})

	_, err := svc.Get(context.Background(), "s-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
