package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/middleware"
	"github.com/planbook-app/planbook-api/internal/models"
	"github.com/planbook-app/planbook-api/internal/service"
)

type teacherRepoStub struct {
	byEmail map[string]models.Teacher
	byID    map[string]models.Teacher
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = "t-new"
	}
	if s.byEmail == nil {
		s.byEmail = make(map[string]models.Teacher)
		s.byID = make(map[string]models.Teacher)
	}
	s.byEmail[teacher.Email] = *teacher
	s.byID[teacher.ID] = *teacher
	return nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := s.byID[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if t, ok := s.byEmail[email]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthHandler(repo *teacherRepoStub) *AuthHandler {
	svc := service.NewAuthService(repo, validator.New(), zap.NewNop(), service.AuthConfig{
		TokenSecret: "handler-test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "planbook-test",
	})
	return NewAuthHandler(svc)
}

func postJSON(t *testing.T, payload interface{}, target string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestAuthHandlerRegister(t *testing.T) {
	handler := newAuthHandler(&teacherRepoStub{})
	w, c := postJSON(t, models.RegisterRequest{
		Email:     "jane@school.edu",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Nguyen",
	}, "/auth/register")

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	handler := newAuthHandler(&teacherRepoStub{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	handler := newAuthHandler(&teacherRepoStub{})
	w, c := postJSON(t, models.LoginRequest{
		Email:    "nobody@school.edu",
		Password: "whatever1",
	}, "/auth/login")

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	handler := newAuthHandler(&teacherRepoStub{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	repo := &teacherRepoStub{}
	handler := newAuthHandler(repo)
	require.NoError(t, repo.Create(context.Background(), &models.Teacher{Email: "jane@school.edu", FirstName: "Jane", Active: true}))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{TeacherID: "t-new", Email: "jane@school.edu"})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Teacher `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "jane@school.edu", envelope.Data.Email)
}
