package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planbook-app/planbook-api/internal/models"
)

const worksheetColumns = `id, lesson_id, tier, title, description, subject, year_level,
        learning_intention, question_count, file_path, created_at, updated_at`

const worksheetQuestionColumns = `id, worksheet_id, question_number, question_text, tier,
        hints, model_answer, difficulty_level, created_at`

// WorksheetRepository handles worksheet and question persistence.
type WorksheetRepository struct {
	db *sqlx.DB
}

// NewWorksheetRepository creates a new worksheet repository.
func NewWorksheetRepository(db *sqlx.DB) *WorksheetRepository {
	return &WorksheetRepository{db: db}
}

// Create inserts a worksheet and its questions in one transaction.
func (r *WorksheetRepository) Create(ctx context.Context, worksheet *models.Worksheet, questions []models.WorksheetQuestion) error {
	if worksheet.ID == "" {
		worksheet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	worksheet.CreatedAt = now
	worksheet.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const wsQuery = `INSERT INTO worksheets (id, lesson_id, tier, title, description, subject, year_level,
        learning_intention, question_count, file_path, created_at, updated_at)
        VALUES (:id, :lesson_id, :tier, :title, :description, :subject, :year_level,
        :learning_intention, :question_count, :file_path, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, wsQuery, worksheet); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create worksheet: %w", err)
	}
	const qQuery = `INSERT INTO worksheet_questions (id, worksheet_id, question_number, question_text, tier,
        hints, model_answer, difficulty_level, created_at)
        VALUES (:id, :worksheet_id, :question_number, :question_text, :tier,
        :hints, :model_answer, :difficulty_level, :created_at)`
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		questions[i].WorksheetID = worksheet.ID
		questions[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, qQuery, questions[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create worksheet question: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit worksheet: %w", err)
	}
	return nil
}

// FindByID returns a single worksheet.
func (r *WorksheetRepository) FindByID(ctx context.Context, id string) (*models.Worksheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM worksheets WHERE id = $1`, worksheetColumns)
	var worksheet models.Worksheet
	if err := r.db.GetContext(ctx, &worksheet, query, id); err != nil {
		return nil, err
	}
	return &worksheet, nil
}

// ListByLesson returns all worksheets generated for a lesson.
func (r *WorksheetRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Worksheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM worksheets WHERE lesson_id = $1 ORDER BY tier`, worksheetColumns)
	var list []models.Worksheet
	if err := r.db.SelectContext(ctx, &list, query, lessonID); err != nil {
		return nil, fmt.Errorf("list worksheets by lesson: %w", err)
	}
	return list, nil
}

// FindByLessonAndTier returns one tier's worksheet for a lesson.
func (r *WorksheetRepository) FindByLessonAndTier(ctx context.Context, lessonID string, tier models.WorksheetTier) (*models.Worksheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM worksheets WHERE lesson_id = $1 AND tier = $2`, worksheetColumns)
	var worksheet models.Worksheet
	if err := r.db.GetContext(ctx, &worksheet, query, lessonID, tier); err != nil {
		return nil, err
	}
	return &worksheet, nil
}

// ListQuestions returns a worksheet's questions in order.
func (r *WorksheetRepository) ListQuestions(ctx context.Context, worksheetID string) ([]models.WorksheetQuestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM worksheet_questions WHERE worksheet_id = $1 ORDER BY question_number`, worksheetQuestionColumns)
	var list []models.WorksheetQuestion
	if err := r.db.SelectContext(ctx, &list, query, worksheetID); err != nil {
		return nil, fmt.Errorf("list worksheet questions: %w", err)
	}
	return list, nil
}

// SetFilePath records the rendered file location for a worksheet.
func (r *WorksheetRepository) SetFilePath(ctx context.Context, worksheetID, filePath string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE worksheets SET file_path = $1, updated_at = $2 WHERE id = $3`, filePath, time.Now().UTC(), worksheetID); err != nil {
		return fmt.Errorf("set worksheet file path: %w", err)
	}
	return nil
}

// DeleteByLesson removes a lesson's worksheets and their questions.
func (r *WorksheetRepository) DeleteByLesson(ctx context.Context, lessonID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM worksheet_questions WHERE worksheet_id IN (SELECT id FROM worksheets WHERE lesson_id = $1)`, lessonID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete worksheet questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM worksheets WHERE lesson_id = $1`, lessonID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete worksheets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit worksheet delete: %w", err)
	}
	return nil
}
