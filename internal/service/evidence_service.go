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

type evidenceRepository interface {
	Create(ctx context.Context, evidence *models.Evidence) error
	FindByID(ctx context.Context, id string) (*models.Evidence, error)
	Update(ctx context.Context, evidence *models.Evidence) error
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Evidence, error)
	ListByStudentAndLE(ctx context.Context, studentID, learningExperienceID string) ([]models.Evidence, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Evidence, error)
}

type progressRecomputer interface {
	Recompute(ctx context.Context, studentID, learningExperienceID string) (*models.StudentProgress, error)
}

// EvidenceService handles observation evidence. Every mutation triggers a
// synchronous progress recomputation for the affected (student, learning
// experience) pair before the call returns.
type EvidenceService struct {
	repo      evidenceRepository
	progress  progressRecomputer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvidenceService constructs the service.
func NewEvidenceService(repo evidenceRepository, progress progressRecomputer, validate *validator.Validate, logger *zap.Logger) *EvidenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvidenceService{repo: repo, progress: progress, validator: validate, logger: logger}
}

// LogEvidenceRequest describes the payload for recording an observation.
type LogEvidenceRequest struct {
	StudentID            string   `json:"student_id" validate:"required"`
	LearningExperienceID string   `json:"learning_experience_id" validate:"required"`
	LessonID             *string  `json:"lesson_id"`
	ObservationText      string   `json:"observation_text" validate:"required"`
	MasteryLevel         int      `json:"mastery_level" validate:"required"`
	SuccessCriteriaIDs   []string `json:"success_criteria_ids"`
	AttachmentURL        *string  `json:"attachment_url"`
	Notes                *string  `json:"notes"`
}

// UpdateEvidenceRequest describes a partial update. Nil fields are left
// unchanged. Any field but the id can change, including the (student,
// learning experience) pair the observation belongs to.
type UpdateEvidenceRequest struct {
	StudentID            *string    `json:"student_id"`
	LearningExperienceID *string    `json:"learning_experience_id"`
	LessonID             *string    `json:"lesson_id"`
	ObservationDate      *time.Time `json:"observation_date"`
	ObservationText      *string    `json:"observation_text"`
	MasteryLevel         *int       `json:"mastery_level"`
	SuccessCriteriaIDs   *[]string  `json:"success_criteria_ids"`
	AttachmentURL        *string    `json:"attachment_url"`
	Notes                *string    `json:"notes"`
}

// Log records a new observation and recomputes the affected progress record.
// The observation date is assigned server-side at ingestion time.
func (s *EvidenceService) Log(ctx context.Context, teacherID string, req LogEvidenceRequest) (*models.Evidence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !models.ValidMasteryLevel(req.MasteryLevel) {
		return nil, appErrors.ErrInvalidMasteryLevel
	}

	evidence := &models.Evidence{
		TeacherID:            teacherID,
		StudentID:            req.StudentID,
		LearningExperienceID: req.LearningExperienceID,
		LessonID:             req.LessonID,
		ObservationDate:      time.Now().UTC(),
		ObservationText:      req.ObservationText,
		MasteryLevel:         req.MasteryLevel,
		AttachmentURL:        req.AttachmentURL,
		Notes:                req.Notes,
	}
	if err := evidence.SetCriteriaIDs(req.SuccessCriteriaIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid success criteria ids")
	}
	if err := s.repo.Create(ctx, evidence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log evidence")
	}

	if _, err := s.progress.Recompute(ctx, evidence.StudentID, evidence.LearningExperienceID); err != nil {
		return nil, err
	}
	return evidence, nil
}

// Update applies a partial edit and recomputes progress for the pair the
// record belongs to after the edit.
func (s *EvidenceService) Update(ctx context.Context, id string, req UpdateEvidenceRequest) (*models.Evidence, error) {
	if req.MasteryLevel != nil && !models.ValidMasteryLevel(*req.MasteryLevel) {
		return nil, appErrors.ErrInvalidMasteryLevel
	}

	evidence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}

	if req.StudentID != nil {
		evidence.StudentID = *req.StudentID
	}
	if req.LearningExperienceID != nil {
		evidence.LearningExperienceID = *req.LearningExperienceID
	}
	if req.LessonID != nil {
		evidence.LessonID = req.LessonID
	}
	if req.ObservationDate != nil {
		evidence.ObservationDate = *req.ObservationDate
	}
	if req.ObservationText != nil {
		evidence.ObservationText = *req.ObservationText
	}
	if req.MasteryLevel != nil {
		evidence.MasteryLevel = *req.MasteryLevel
	}
	if req.SuccessCriteriaIDs != nil {
		if err := evidence.SetCriteriaIDs(*req.SuccessCriteriaIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid success criteria ids")
		}
	}
	if req.AttachmentURL != nil {
		evidence.AttachmentURL = req.AttachmentURL
	}
	if req.Notes != nil {
		evidence.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, evidence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evidence")
	}

	if _, err := s.progress.Recompute(ctx, evidence.StudentID, evidence.LearningExperienceID); err != nil {
		return nil, err
	}
	return evidence, nil
}

// Delete removes an observation and recomputes the pair it contributed to.
// The pair is captured before deletion so the recompute targets the right
// record even though the row is gone.
func (s *EvidenceService) Delete(ctx context.Context, id string) error {
	evidence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}
	studentID := evidence.StudentID
	learningExperienceID := evidence.LearningExperienceID

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evidence")
	}

	if _, err := s.progress.Recompute(ctx, studentID, learningExperienceID); err != nil {
		return err
	}
	return nil
}

// Get returns a single observation.
func (s *EvidenceService) Get(ctx context.Context, id string) (*models.Evidence, error) {
	evidence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}
	return evidence, nil
}

// ListByStudent returns a student's evidence, newest observation first.
func (s *EvidenceService) ListByStudent(ctx context.Context, studentID string) ([]models.Evidence, error) {
	list, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	return list, nil
}

// ListByPair returns evidence for a (student, learning experience) pair,
// newest observation first.
func (s *EvidenceService) ListByPair(ctx context.Context, studentID, learningExperienceID string) ([]models.Evidence, error) {
	list, err := s.repo.ListByStudentAndLE(ctx, studentID, learningExperienceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	return list, nil
}

// ListByTeacher returns all evidence logged by a teacher.
func (s *EvidenceService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Evidence, error) {
	list, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	return list, nil
}
