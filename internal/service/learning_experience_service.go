package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type learningExperienceRepository interface {
	Create(ctx context.Context, le *models.LearningExperience) error
	FindByID(ctx context.Context, id string) (*models.LearningExperience, error)
	List(ctx context.Context, filter models.LearningExperienceFilter) ([]models.LearningExperience, error)
	Update(ctx context.Context, le *models.LearningExperience) error
	Deactivate(ctx context.Context, id string) error
}

// LearningExperienceService manages the planned lesson catalogue.
type LearningExperienceService struct {
	repo      learningExperienceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLearningExperienceService constructs the service.
func NewLearningExperienceService(repo learningExperienceRepository, validate *validator.Validate, logger *zap.Logger) *LearningExperienceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearningExperienceService{repo: repo, validator: validate, logger: logger}
}

// CreateLearningExperienceRequest describes the creation payload.
type CreateLearningExperienceRequest struct {
	UnitNumber        int      `json:"unit_number" validate:"required,min=1"`
	ExperienceNumber  int      `json:"experience_number" validate:"required,min=1"`
	CoreConcept       string   `json:"core_concept" validate:"required"`
	LearningIntention string   `json:"learning_intention" validate:"required"`
	SuccessCriteria   []string `json:"success_criteria" validate:"required,min=1"`
	Subject           string   `json:"subject" validate:"required"`
	YearLevel         int      `json:"year_level" validate:"required,min=1,max=12"`
	NESAOutcomeCode   *string  `json:"nesa_outcome_code"`
	DurationMinutes   int      `json:"duration_minutes"`
}

// UpdateLearningExperienceRequest describes a partial update. Nil fields are
// left unchanged.
type UpdateLearningExperienceRequest struct {
	UnitNumber        *int      `json:"unit_number"`
	ExperienceNumber  *int      `json:"experience_number"`
	CoreConcept       *string   `json:"core_concept"`
	LearningIntention *string   `json:"learning_intention"`
	SuccessCriteria   *[]string `json:"success_criteria"`
	Subject           *string   `json:"subject"`
	YearLevel         *int      `json:"year_level"`
	NESAOutcomeCode   *string   `json:"nesa_outcome_code"`
	DurationMinutes   *int      `json:"duration_minutes"`
}

// Create registers a new learning experience owned by the teacher.
func (s *LearningExperienceService) Create(ctx context.Context, teacherID string, req CreateLearningExperienceRequest) (*models.LearningExperience, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	le := &models.LearningExperience{
		TeacherID:         teacherID,
		UnitNumber:        req.UnitNumber,
		ExperienceNumber:  req.ExperienceNumber,
		CoreConcept:       req.CoreConcept,
		LearningIntention: req.LearningIntention,
		Subject:           req.Subject,
		YearLevel:         req.YearLevel,
		NESAOutcomeCode:   req.NESAOutcomeCode,
		DurationMinutes:   req.DurationMinutes,
		Active:            true,
	}
	if err := le.SetSuccessCriteriaList(req.SuccessCriteria); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid success criteria")
	}
	if err := s.repo.Create(ctx, le); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create learning experience")
	}
	return le, nil
}

// Get returns a single learning experience.
func (s *LearningExperienceService) Get(ctx context.Context, id string) (*models.LearningExperience, error) {
	le, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning experience")
	}
	return le, nil
}

// List returns learning experiences matching the filter.
func (s *LearningExperienceService) List(ctx context.Context, filter models.LearningExperienceFilter) ([]models.LearningExperience, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learning experiences")
	}
	return list, nil
}

// Criteria returns the ordered success criteria list for an experience.
// A criterion's id is its zero-based position in this list.
func (s *LearningExperienceService) Criteria(ctx context.Context, id string) ([]string, error) {
	le, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return le.SuccessCriteriaList(), nil
}

// Update applies a partial edit to a learning experience. Editing the
// success criteria list remaps which stored evidence demonstrates which
// criterion, since evidence references criteria by list position.
func (s *LearningExperienceService) Update(ctx context.Context, id string, req UpdateLearningExperienceRequest) (*models.LearningExperience, error) {
	le, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning experience")
	}

	if req.UnitNumber != nil {
		le.UnitNumber = *req.UnitNumber
	}
	if req.ExperienceNumber != nil {
		le.ExperienceNumber = *req.ExperienceNumber
	}
	if req.CoreConcept != nil {
		le.CoreConcept = *req.CoreConcept
	}
	if req.LearningIntention != nil {
		le.LearningIntention = *req.LearningIntention
	}
	if req.SuccessCriteria != nil {
		if err := le.SetSuccessCriteriaList(*req.SuccessCriteria); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid success criteria")
		}
	}
	if req.Subject != nil {
		le.Subject = *req.Subject
	}
	if req.YearLevel != nil {
		le.YearLevel = *req.YearLevel
	}
	if req.NESAOutcomeCode != nil {
		le.NESAOutcomeCode = req.NESAOutcomeCode
	}
	if req.DurationMinutes != nil {
		le.DurationMinutes = *req.DurationMinutes
	}

	if err := s.repo.Update(ctx, le); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update learning experience")
	}
	return le, nil
}

// Deactivate soft deletes a learning experience. Existing evidence and
// progress records are untouched.
func (s *LearningExperienceService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate learning experience")
	}
	return nil
}
