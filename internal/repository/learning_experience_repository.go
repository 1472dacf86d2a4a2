package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planbook-app/planbook-api/internal/models"
)

const learningExperienceColumns = `id, teacher_id, unit_number, experience_number, core_concept,
        learning_intention, success_criteria, subject, year_level, nesa_outcome_code,
        duration_minutes, active, created_at, updated_at`

// LearningExperienceRepository handles learning experience persistence.
type LearningExperienceRepository struct {
	db *sqlx.DB
}

// NewLearningExperienceRepository creates a new learning experience repository.
func NewLearningExperienceRepository(db *sqlx.DB) *LearningExperienceRepository {
	return &LearningExperienceRepository{db: db}
}

// Create inserts a new learning experience.
func (r *LearningExperienceRepository) Create(ctx context.Context, le *models.LearningExperience) error {
	if le.ID == "" {
		le.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	le.CreatedAt = now
	le.UpdatedAt = now
	if len(le.SuccessCriteria) == 0 {
		le.SuccessCriteria = []byte("[]")
	}
	const query = `INSERT INTO learning_experiences (id, teacher_id, unit_number, experience_number, core_concept,
        learning_intention, success_criteria, subject, year_level, nesa_outcome_code, duration_minutes, active, created_at, updated_at)
        VALUES (:id, :teacher_id, :unit_number, :experience_number, :core_concept,
        :learning_intention, :success_criteria, :subject, :year_level, :nesa_outcome_code, :duration_minutes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, le); err != nil {
		return fmt.Errorf("create learning experience: %w", err)
	}
	return nil
}

// FindByID returns a single learning experience.
func (r *LearningExperienceRepository) FindByID(ctx context.Context, id string) (*models.LearningExperience, error) {
	query := fmt.Sprintf(`SELECT %s FROM learning_experiences WHERE id = $1`, learningExperienceColumns)
	var le models.LearningExperience
	if err := r.db.GetContext(ctx, &le, query, id); err != nil {
		return nil, err
	}
	return &le, nil
}

// List returns learning experiences matching the filter.
func (r *LearningExperienceRepository) List(ctx context.Context, filter models.LearningExperienceFilter) ([]models.LearningExperience, error) {
	query := fmt.Sprintf(`SELECT %s FROM learning_experiences WHERE 1=1`, learningExperienceColumns)
	var args []interface{}
	if filter.TeacherID != "" {
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	if filter.UnitNumber > 0 {
		query += fmt.Sprintf(" AND unit_number = $%d", len(args)+1)
		args = append(args, filter.UnitNumber)
	}
	if filter.Subject != "" {
		query += fmt.Sprintf(" AND subject = $%d", len(args)+1)
		args = append(args, filter.Subject)
	}
	if filter.ActiveOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY unit_number, experience_number"
	var list []models.LearningExperience
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list learning experiences: %w", err)
	}
	return list, nil
}

// Update persists a modified learning experience.
func (r *LearningExperienceRepository) Update(ctx context.Context, le *models.LearningExperience) error {
	le.UpdatedAt = time.Now().UTC()
	if len(le.SuccessCriteria) == 0 {
		le.SuccessCriteria = []byte("[]")
	}
	const query = `UPDATE learning_experiences SET unit_number = :unit_number, experience_number = :experience_number,
        core_concept = :core_concept, learning_intention = :learning_intention, success_criteria = :success_criteria,
        subject = :subject, year_level = :year_level, nesa_outcome_code = :nesa_outcome_code,
        duration_minutes = :duration_minutes, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, le); err != nil {
		return fmt.Errorf("update learning experience: %w", err)
	}
	return nil
}

// Deactivate soft deletes a learning experience.
func (r *LearningExperienceRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE learning_experiences SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate learning experience: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate learning experience: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deactivate learning experience: no rows affected")
	}
	return nil
}
