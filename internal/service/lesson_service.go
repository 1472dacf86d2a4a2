package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type lessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error)
	ListByTeacherAndWeek(ctx context.Context, teacherID string, weekNumber int) ([]models.Lesson, error)
	ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type lessonCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.LearningExperience, error)
}

// Lesson status transitions. A lesson moves forward through the weekly-plan
// lifecycle; archived is terminal.
var lessonTransitions = map[models.LessonStatus][]models.LessonStatus{
	models.LessonStatusDraft:     {models.LessonStatusPublished, models.LessonStatusArchived},
	models.LessonStatusPublished: {models.LessonStatusTaught, models.LessonStatusDraft, models.LessonStatusArchived},
	models.LessonStatusTaught:    {models.LessonStatusArchived},
	models.LessonStatusArchived:  {},
}

// LessonService manages scheduled lessons in the weekly plan.
type LessonService struct {
	repo      lessonRepository
	catalog   lessonCatalogReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs the service.
func NewLessonService(repo lessonRepository, catalog lessonCatalogReader, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, catalog: catalog, validator: validate, logger: logger}
}

// CreateLessonRequest describes the scheduling payload.
type CreateLessonRequest struct {
	LearningExperienceID string    `json:"learning_experience_id" validate:"required"`
	WeekNumber           int       `json:"week_number" validate:"required,min=1"`
	DateScheduled        time.Time `json:"date_scheduled" validate:"required"`
	DurationMinutes      int       `json:"duration_minutes"`
	Location             *string   `json:"location"`
	Notes                *string   `json:"notes"`
}

// UpdateLessonRequest describes a partial update. Nil fields are left
// unchanged. Status changes go through Transition.
type UpdateLessonRequest struct {
	WeekNumber      *int       `json:"week_number"`
	DateScheduled   *time.Time `json:"date_scheduled"`
	DurationMinutes *int       `json:"duration_minutes"`
	Location        *string    `json:"location"`
	Notes           *string    `json:"notes"`
}

// Create schedules a lesson. The referenced learning experience must exist
// and belong to the same teacher; duration defaults to the experience's
// planned duration when omitted.
func (s *LessonService) Create(ctx context.Context, teacherID string, req CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	le, err := s.catalog.FindByID(ctx, req.LearningExperienceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning experience")
	}
	if le.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "learning experience belongs to another teacher")
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = le.DurationMinutes
	}

	lesson := &models.Lesson{
		TeacherID:            teacherID,
		LearningExperienceID: req.LearningExperienceID,
		WeekNumber:           req.WeekNumber,
		DateScheduled:        req.DateScheduled,
		DurationMinutes:      duration,
		Location:             req.Location,
		Notes:                req.Notes,
		Status:               models.LessonStatusDraft,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return lesson, nil
}

// Get returns a single lesson.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// ListByTeacher returns all of a teacher's lessons ordered by schedule.
func (s *LessonService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	list, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return list, nil
}

// ListByLearningExperience returns every lesson scheduled for an LE.
func (s *LessonService) ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.Lesson, error) {
	list, err := s.repo.ListByLearningExperience(ctx, learningExperienceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return list, nil
}

// WeeklyPlan returns the published lessons for a teacher's week.
func (s *LessonService) WeeklyPlan(ctx context.Context, teacherID string, weekNumber int) ([]models.Lesson, error) {
	list, err := s.repo.ListByTeacherAndWeek(ctx, teacherID, weekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly plan")
	}
	return list, nil
}

// Update applies a partial edit to a lesson.
func (s *LessonService) Update(ctx context.Context, id string, req UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	if req.WeekNumber != nil {
		lesson.WeekNumber = *req.WeekNumber
	}
	if req.DateScheduled != nil {
		lesson.DateScheduled = *req.DateScheduled
	}
	if req.DurationMinutes != nil {
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.Location != nil {
		lesson.Location = req.Location
	}
	if req.Notes != nil {
		lesson.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	return lesson, nil
}

// Transition moves a lesson to a new status, enforcing the lifecycle.
func (s *LessonService) Transition(ctx context.Context, id string, target models.LessonStatus) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	allowed := false
	for _, next := range lessonTransitions[lesson.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "invalid lesson status transition")
	}

	lesson.Status = target
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson status")
	}
	return lesson, nil
}

// Delete removes a lesson from the plan. Evidence logged against it keeps
// its lesson reference for audit purposes.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	return nil
}
