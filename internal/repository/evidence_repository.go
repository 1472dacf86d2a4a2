package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planbook-app/planbook-api/internal/models"
)

const evidenceColumns = `id, teacher_id, student_id, learning_experience_id, lesson_id,
        observation_date, observation_text, mastery_level, success_criteria_ids,
        attachment_url, notes, created_at, updated_at`

// EvidenceRepository handles evidence persistence.
//
// The by-student and by-pair queries order rows most-recent observation first.
// The progress aggregator depends on that ordering and must not re-sort.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository creates a new evidence repository.
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Create inserts a new evidence record.
func (r *EvidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	if evidence.ID == "" {
		evidence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	evidence.CreatedAt = now
	evidence.UpdatedAt = now
	if len(evidence.SuccessCriteriaIDs) == 0 {
		evidence.SuccessCriteriaIDs = []byte("[]")
	}
	const query = `INSERT INTO evidence (id, teacher_id, student_id, learning_experience_id, lesson_id,
        observation_date, observation_text, mastery_level, success_criteria_ids, attachment_url, notes, created_at, updated_at)
        VALUES (:id, :teacher_id, :student_id, :learning_experience_id, :lesson_id,
        :observation_date, :observation_text, :mastery_level, :success_criteria_ids, :attachment_url, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evidence); err != nil {
		return fmt.Errorf("create evidence: %w", err)
	}
	return nil
}

// FindByID returns a single evidence record.
func (r *EvidenceRepository) FindByID(ctx context.Context, id string) (*models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM evidence WHERE id = $1`, evidenceColumns)
	var evidence models.Evidence
	if err := r.db.GetContext(ctx, &evidence, query, id); err != nil {
		return nil, err
	}
	return &evidence, nil
}

// Update persists a modified evidence record.
func (r *EvidenceRepository) Update(ctx context.Context, evidence *models.Evidence) error {
	evidence.UpdatedAt = time.Now().UTC()
	if len(evidence.SuccessCriteriaIDs) == 0 {
		evidence.SuccessCriteriaIDs = []byte("[]")
	}
	const query = `UPDATE evidence SET student_id = :student_id, learning_experience_id = :learning_experience_id,
        lesson_id = :lesson_id, observation_text = :observation_text, mastery_level = :mastery_level,
        success_criteria_ids = :success_criteria_ids, attachment_url = :attachment_url, notes = :notes,
        updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, evidence); err != nil {
		return fmt.Errorf("update evidence: %w", err)
	}
	return nil
}

// Delete removes an evidence record.
func (r *EvidenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM evidence WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}
	return nil
}

// ListByStudent returns all evidence for a student, newest observation first.
func (r *EvidenceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM evidence WHERE student_id = $1 ORDER BY observation_date DESC`, evidenceColumns)
	var list []models.Evidence
	if err := r.db.SelectContext(ctx, &list, query, studentID); err != nil {
		return nil, fmt.Errorf("list evidence by student: %w", err)
	}
	return list, nil
}

// ListByStudentAndLE returns all evidence for a (student, learning experience)
// pair, newest observation first.
func (r *EvidenceRepository) ListByStudentAndLE(ctx context.Context, studentID, learningExperienceID string) ([]models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM evidence WHERE student_id = $1 AND learning_experience_id = $2 ORDER BY observation_date DESC`, evidenceColumns)
	var list []models.Evidence
	if err := r.db.SelectContext(ctx, &list, query, studentID, learningExperienceID); err != nil {
		return nil, fmt.Errorf("list evidence by pair: %w", err)
	}
	return list, nil
}

// ListByTeacher returns all evidence logged by a teacher, newest first.
func (r *EvidenceRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM evidence WHERE teacher_id = $1 ORDER BY observation_date DESC`, evidenceColumns)
	var list []models.Evidence
	if err := r.db.SelectContext(ctx, &list, query, teacherID); err != nil {
		return nil, fmt.Errorf("list evidence by teacher: %w", err)
	}
	return list, nil
}
