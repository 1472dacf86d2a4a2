package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// LearningExperience is a planned lesson concept: a learning intention plus
// an ordered list of success criteria.
//
// A criterion is referenced by evidence through its zero-based position in
// the list, stringified. Reordering or inserting criteria therefore remaps
// which evidence demonstrates which criterion; the positional scheme is kept
// for compatibility with stored evidence.
type LearningExperience struct {
	ID                string         `db:"id" json:"id"`
	TeacherID         string         `db:"teacher_id" json:"teacher_id"`
	UnitNumber        int            `db:"unit_number" json:"unit_number"`
	ExperienceNumber  int            `db:"experience_number" json:"experience_number"`
	CoreConcept       string         `db:"core_concept" json:"core_concept"`
	LearningIntention string         `db:"learning_intention" json:"learning_intention"`
	SuccessCriteria   types.JSONText `db:"success_criteria" json:"success_criteria"`
	Subject           string         `db:"subject" json:"subject"`
	YearLevel         int            `db:"year_level" json:"year_level"`
	NESAOutcomeCode   *string        `db:"nesa_outcome_code" json:"nesa_outcome_code,omitempty"`
	DurationMinutes   int            `db:"duration_minutes" json:"duration_minutes"`
	Active            bool           `db:"active" json:"active"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// SuccessCriteriaList decodes the stored criteria into an ordered slice.
func (le *LearningExperience) SuccessCriteriaList() []string {
	if len(le.SuccessCriteria) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(le.SuccessCriteria, &list); err != nil {
		return []string{string(le.SuccessCriteria)}
	}
	return list
}

// SetSuccessCriteriaList encodes the ordered criteria slice for storage.
func (le *LearningExperience) SetSuccessCriteriaList(list []string) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	le.SuccessCriteria = raw
	return nil
}

// LearningExperienceFilter narrows LE listings.
type LearningExperienceFilter struct {
	TeacherID  string
	UnitNumber int
	Subject    string
	ActiveOnly bool
}
