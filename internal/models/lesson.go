package models

import "time"

// LessonStatus tracks a lesson through its weekly-plan lifecycle.
type LessonStatus string

const (
	LessonStatusDraft     LessonStatus = "draft"
	LessonStatusPublished LessonStatus = "published"
	LessonStatusTaught    LessonStatus = "taught"
	LessonStatusArchived  LessonStatus = "archived"
)

// Lesson is a scheduled instance of a learning experience in a weekly plan.
type Lesson struct {
	ID                   string       `db:"id" json:"id"`
	TeacherID            string       `db:"teacher_id" json:"teacher_id"`
	LearningExperienceID string       `db:"learning_experience_id" json:"learning_experience_id"`
	WeekNumber           int          `db:"week_number" json:"week_number"`
	DateScheduled        time.Time    `db:"date_scheduled" json:"date_scheduled"`
	DurationMinutes      int          `db:"duration_minutes" json:"duration_minutes"`
	Location             *string      `db:"location" json:"location,omitempty"`
	Notes                *string      `db:"notes" json:"notes,omitempty"`
	Status               LessonStatus `db:"status" json:"status"`
	CreatedAt            time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}
