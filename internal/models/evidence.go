package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Mastery levels form an ordinal 1..4 scale.
const (
	MasteryDeveloping  = 1
	MasteryApproaching = 2
	MasteryMeeting     = 3
	MasteryExceeding   = 4
)

// Evidence is a timestamped teacher observation of a student's performance
// against a learning experience. SuccessCriteriaIDs holds the positional
// criterion ids the observation demonstrates.
type Evidence struct {
	ID                   string         `db:"id" json:"id"`
	TeacherID            string         `db:"teacher_id" json:"teacher_id"`
	StudentID            string         `db:"student_id" json:"student_id"`
	LearningExperienceID string         `db:"learning_experience_id" json:"learning_experience_id"`
	LessonID             *string        `db:"lesson_id" json:"lesson_id,omitempty"`
	ObservationDate      time.Time      `db:"observation_date" json:"observation_date"`
	ObservationText      string         `db:"observation_text" json:"observation_text"`
	MasteryLevel         int            `db:"mastery_level" json:"mastery_level"`
	SuccessCriteriaIDs   types.JSONText `db:"success_criteria_ids" json:"success_criteria_ids"`
	AttachmentURL        *string        `db:"attachment_url" json:"attachment_url,omitempty"`
	Notes                *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// CriteriaIDs decodes the demonstrated criterion ids.
func (e *Evidence) CriteriaIDs() []string {
	if len(e.SuccessCriteriaIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(e.SuccessCriteriaIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// SetCriteriaIDs encodes the demonstrated criterion ids for storage.
func (e *Evidence) SetCriteriaIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	e.SuccessCriteriaIDs = raw
	return nil
}

// Demonstrates reports whether the observation lists the given criterion id.
func (e *Evidence) Demonstrates(criterionID string) bool {
	for _, id := range e.CriteriaIDs() {
		if id == criterionID {
			return true
		}
	}
	return false
}

// ValidMasteryLevel reports whether the level is on the 1..4 scale.
func ValidMasteryLevel(level int) bool {
	return level >= MasteryDeveloping && level <= MasteryExceeding
}
