package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Trend classifies the direction of recent evidence relative to older evidence.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Criterion statuses recorded per success criterion.
const (
	CriterionMet    = "met"
	CriterionNotMet = "not_met"
)

// StudentProgress is the aggregated summary for one (student, learning
// experience) pair, derived from the full evidence history.
type StudentProgress struct {
	ID                    string         `db:"id" json:"id"`
	StudentID             string         `db:"student_id" json:"student_id"`
	LearningExperienceID  string         `db:"learning_experience_id" json:"learning_experience_id"`
	MasteryLevel          int            `db:"mastery_level" json:"mastery_level"`
	SuccessCriteriaStatus types.JSONText `db:"success_criteria_status" json:"success_criteria_status"`
	EvidenceCount         int            `db:"evidence_count" json:"evidence_count"`
	Trend                 Trend          `db:"trend" json:"trend"`
	LastEvidenceDate      *time.Time     `db:"last_evidence_date" json:"last_evidence_date,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// CriteriaStatus decodes the per-criterion met/not_met map.
func (p *StudentProgress) CriteriaStatus() map[string]string {
	if len(p.SuccessCriteriaStatus) == 0 {
		return map[string]string{}
	}
	var status map[string]string
	if err := json.Unmarshal(p.SuccessCriteriaStatus, &status); err != nil {
		return map[string]string{}
	}
	return status
}

// SetCriteriaStatus encodes the per-criterion map for storage.
func (p *StudentProgress) SetCriteriaStatus(status map[string]string) error {
	if status == nil {
		status = map[string]string{}
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	p.SuccessCriteriaStatus = raw
	return nil
}
