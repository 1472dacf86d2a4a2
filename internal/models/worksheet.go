package models

import "time"

// WorksheetTier names the four differentiation tiers.
type WorksheetTier string

const (
	TierMild       WorksheetTier = "mild"
	TierMedium     WorksheetTier = "medium"
	TierSpicy      WorksheetTier = "spicy"
	TierEnrichment WorksheetTier = "enrichment"
)

// TierQuestionCount returns how many questions a tier carries.
func TierQuestionCount(tier WorksheetTier) int {
	switch tier {
	case TierMild:
		return 5
	case TierMedium:
		return 10
	case TierSpicy:
		return 15
	case TierEnrichment:
		return 2
	default:
		return 0
	}
}

// AllWorksheetTiers lists tiers in generation order.
func AllWorksheetTiers() []WorksheetTier {
	return []WorksheetTier{TierMild, TierMedium, TierSpicy, TierEnrichment}
}

// Worksheet is one tier's question set generated for a lesson.
type Worksheet struct {
	ID                string        `db:"id" json:"id"`
	LessonID          string        `db:"lesson_id" json:"lesson_id"`
	Tier              WorksheetTier `db:"tier" json:"tier"`
	Title             string        `db:"title" json:"title"`
	Description       *string       `db:"description" json:"description,omitempty"`
	Subject           string        `db:"subject" json:"subject"`
	YearLevel         int           `db:"year_level" json:"year_level"`
	LearningIntention string        `db:"learning_intention" json:"learning_intention"`
	QuestionCount     int           `db:"question_count" json:"question_count"`
	FilePath          *string       `db:"file_path" json:"file_path,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// WorksheetQuestion is one numbered question on a worksheet.
type WorksheetQuestion struct {
	ID              string        `db:"id" json:"id"`
	WorksheetID     string        `db:"worksheet_id" json:"worksheet_id"`
	QuestionNumber  int           `db:"question_number" json:"question_number"`
	QuestionText    string        `db:"question_text" json:"question_text"`
	Tier            WorksheetTier `db:"tier" json:"tier"`
	Hints           *string       `db:"hints" json:"hints,omitempty"`
	ModelAnswer     *string       `db:"model_answer" json:"model_answer,omitempty"`
	DifficultyLevel *int          `db:"difficulty_level" json:"difficulty_level,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}
