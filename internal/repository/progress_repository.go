package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planbook-app/planbook-api/internal/models"
)

const progressColumns = `id, student_id, learning_experience_id, mastery_level,
        success_criteria_status, evidence_count, trend, last_evidence_date, created_at, updated_at`

// ProgressRepository persists aggregated student progress records.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// FindByPair returns the record for a (student, learning experience) pair.
func (r *ProgressRepository) FindByPair(ctx context.Context, studentID, learningExperienceID string) (*models.StudentProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_progress WHERE student_id = $1 AND learning_experience_id = $2`, progressColumns)
	var progress models.StudentProgress
	if err := r.db.GetContext(ctx, &progress, query, studentID, learningExperienceID); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Upsert inserts or updates the record for its (student, LE) pair.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *models.StudentProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	progress.UpdatedAt = now
	if len(progress.SuccessCriteriaStatus) == 0 {
		progress.SuccessCriteriaStatus = []byte("{}")
	}
	const query = `INSERT INTO student_progress (id, student_id, learning_experience_id, mastery_level,
        success_criteria_status, evidence_count, trend, last_evidence_date, created_at, updated_at)
        VALUES (:id, :student_id, :learning_experience_id, :mastery_level,
        :success_criteria_status, :evidence_count, :trend, :last_evidence_date, :created_at, :updated_at)
        ON CONFLICT (student_id, learning_experience_id)
        DO UPDATE SET mastery_level = EXCLUDED.mastery_level,
            success_criteria_status = EXCLUDED.success_criteria_status,
            evidence_count = EXCLUDED.evidence_count,
            trend = EXCLUDED.trend,
            last_evidence_date = EXCLUDED.last_evidence_date,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// ListByStudent returns all progress records for a student.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_progress WHERE student_id = $1 ORDER BY updated_at DESC`, progressColumns)
	var list []models.StudentProgress
	if err := r.db.SelectContext(ctx, &list, query, studentID); err != nil {
		return nil, fmt.Errorf("list progress by student: %w", err)
	}
	return list, nil
}

// ListByLearningExperience returns the class roster of progress records for an LE.
func (r *ProgressRepository) ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.StudentProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_progress WHERE learning_experience_id = $1 ORDER BY updated_at DESC`, progressColumns)
	var list []models.StudentProgress
	if err := r.db.SelectContext(ctx, &list, query, learningExperienceID); err != nil {
		return nil, fmt.Errorf("list progress by learning experience: %w", err)
	}
	return list, nil
}
