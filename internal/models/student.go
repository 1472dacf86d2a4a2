package models

import "time"

// Student is a class member evidence is logged against.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	YearLevel int       `db:"year_level" json:"year_level"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Search    string
	YearLevel int
	Active    *bool
	Page      int
	Limit     int
}
