package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	"github.com/planbook-app/planbook-api/internal/service"
)

type teacherRepoStub struct {
	teacher *models.Teacher
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = "t1"
	}
	s.teacher = teacher
	return nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if s.teacher != nil && s.teacher.ID == id {
		return s.teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if s.teacher != nil && s.teacher.Email == email {
		return s.teacher, nil
	}
	return nil, sql.ErrNoRows
}

func jwtTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(&teacherRepoStub{}, validator.New(), zap.NewNop(), service.AuthConfig{
		TokenSecret: "middleware-test-secret",
		TokenExpiry: time.Hour,
	})
	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"teacher_id": claims.(*models.JWTClaims).TeacherID})
	})
	return r, authSvc
}

func TestJWTMissingHeader(t *testing.T) {
	r, _ := jwtTestRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	r, _ := jwtTestRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTInvalidToken(t *testing.T) {
	r, _ := jwtTestRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidTokenSetsClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &teacherRepoStub{}
	authSvc := service.NewAuthService(repo, validator.New(), zap.NewNop(), service.AuthConfig{
		TokenSecret: "middleware-test-secret",
		TokenExpiry: time.Hour,
	})
	resp, err := authSvc.Register(context.Background(), models.RegisterRequest{
		Email:    "jane@school.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"teacher_id": claims.(*models.JWTClaims).TeacherID})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.Teacher.ID)
}
