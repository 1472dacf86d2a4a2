package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planbook-app/planbook-api/internal/models"
)

const lessonColumns = `id, teacher_id, learning_experience_id, week_number, date_scheduled,
        duration_minutes, location, notes, status, created_at, updated_at`

// LessonRepository handles lesson persistence.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create inserts a new lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	if lesson.Status == "" {
		lesson.Status = models.LessonStatusDraft
	}
	const query = `INSERT INTO lessons (id, teacher_id, learning_experience_id, week_number, date_scheduled,
        duration_minutes, location, notes, status, created_at, updated_at)
        VALUES (:id, :teacher_id, :learning_experience_id, :week_number, :date_scheduled,
        :duration_minutes, :location, :notes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// FindByID returns a single lesson.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE id = $1`, lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByTeacher returns all lessons for a teacher ordered by schedule.
func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE teacher_id = $1 ORDER BY date_scheduled`, lessonColumns)
	var list []models.Lesson
	if err := r.db.SelectContext(ctx, &list, query, teacherID); err != nil {
		return nil, fmt.Errorf("list lessons by teacher: %w", err)
	}
	return list, nil
}

// ListByTeacherAndWeek returns published lessons for a teacher's week.
func (r *LessonRepository) ListByTeacherAndWeek(ctx context.Context, teacherID string, weekNumber int) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE teacher_id = $1 AND week_number = $2 AND status = $3 ORDER BY date_scheduled`, lessonColumns)
	var list []models.Lesson
	if err := r.db.SelectContext(ctx, &list, query, teacherID, weekNumber, models.LessonStatusPublished); err != nil {
		return nil, fmt.Errorf("list lessons by week: %w", err)
	}
	return list, nil
}

// ListByLearningExperience returns lessons scheduled for an LE.
func (r *LessonRepository) ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE learning_experience_id = $1 ORDER BY date_scheduled`, lessonColumns)
	var list []models.Lesson
	if err := r.db.SelectContext(ctx, &list, query, learningExperienceID); err != nil {
		return nil, fmt.Errorf("list lessons by learning experience: %w", err)
	}
	return list, nil
}

// Update persists a modified lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET week_number = :week_number, date_scheduled = :date_scheduled,
        duration_minutes = :duration_minutes, location = :location, notes = :notes, status = :status,
        updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
