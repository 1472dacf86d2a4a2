package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type mockTeacherRepo struct {
	byEmail map[string]models.Teacher
	byID    map[string]models.Teacher
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = "t-new"
	}
	if m.byEmail == nil {
		m.byEmail = make(map[string]models.Teacher)
	}
	if m.byID == nil {
		m.byID = make(map[string]models.Teacher)
	}
	m.byEmail[teacher.Email] = *teacher
	m.byID[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.byID[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if t, ok := m.byEmail[email]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(repo *mockTeacherRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "planbook-test",
	})
}

func hashedTeacher(id, email, password string, active bool) models.Teacher {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return models.Teacher{ID: id, Email: email, PasswordHash: string(hash), Active: active}
}

func TestAuthRegisterIssuesValidToken(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := newAuthFixture(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "jane@school.edu",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Nguyen",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotNil(t, resp.Teacher)
	assert.True(t, resp.Teacher.Active)
	assert.NotEqual(t, "correct-horse", resp.Teacher.PasswordHash)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Teacher.ID, claims.TeacherID)
	assert.Equal(t, "jane@school.edu", claims.Email)
	assert.Equal(t, "planbook-test", claims.Issuer)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	repo := &mockTeacherRepo{byEmail: map[string]models.Teacher{
		"jane@school.edu": {ID: "t1", Email: "jane@school.edu"},
	}}
	svc := newAuthFixture(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "jane@school.edu",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	svc := newAuthFixture(&mockTeacherRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "jane@school.edu",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := &mockTeacherRepo{byEmail: map[string]models.Teacher{
		"jane@school.edu": hashedTeacher("t1", "jane@school.edu", "correct-horse", true),
	}}
	svc := newAuthFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jane@school.edu",
		Password: "wrong-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc := newAuthFixture(&mockTeacherRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@school.edu",
		Password: "whatever1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	repo := &mockTeacherRepo{byEmail: map[string]models.Teacher{
		"jane@school.edu": hashedTeacher("t1", "jane@school.edu", "correct-horse", false),
	}}
	svc := newAuthFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jane@school.edu",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginSuccess(t *testing.T) {
	repo := &mockTeacherRepo{byEmail: map[string]models.Teacher{
		"jane@school.edu": hashedTeacher("t1", "jane@school.edu", "correct-horse", true),
	}}
	svc := newAuthFixture(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jane@school.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "t1", claims.TeacherID)
}

func TestAuthValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := &mockTeacherRepo{byEmail: map[string]models.Teacher{
		"jane@school.edu": hashedTeacher("t1", "jane@school.edu", "correct-horse", true),
	}}
	issuer := newAuthFixture(repo)
	resp, err := issuer.Login(context.Background(), models.LoginRequest{
		Email:    "jane@school.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "different-secret",
		TokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
