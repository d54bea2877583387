package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TargetRole selects who fills a questionnaire.
type TargetRole string

const (
	TargetStudent TargetRole = "student"
	TargetTeacher TargetRole = "teacher"
)

// Valid reports whether the target role is known.
func (r TargetRole) Valid() bool {
	return r == TargetStudent || r == TargetTeacher
}

// Accepts reports whether a user of the given role may fill a questionnaire
// aimed at r. Class heads answer student questionnaires.
func (r TargetRole) Accepts(role UserRole) bool {
	switch r {
	case TargetStudent:
		return role == RoleStudent || role == RoleClassHead
	case TargetTeacher:
		return role == RoleTeacher
	}
	return false
}

// QuestionType defines how a question is answered.
type QuestionType string

const (
	QuestionBinary  QuestionType = "binary"
	QuestionStars   QuestionType = "stars"
	QuestionScale10 QuestionType = "scale_10"
	QuestionText    QuestionType = "text"
	QuestionChoice  QuestionType = "choice"
)

// Numeric reports whether answers to the type contribute to scores.
func (t QuestionType) Numeric() bool {
	switch t {
	case QuestionBinary, QuestionStars, QuestionScale10:
		return true
	}
	return false
}

// Question is one entry of a questionnaire.
type Question struct {
	ID       string       `json:"id" validate:"required"`
	Text     string       `json:"text" validate:"required"`
	Type     QuestionType `json:"type" validate:"required,oneof=binary stars scale_10 text choice"`
	Weight   float64      `json:"weight" validate:"gte=0"`
	Category string       `json:"category,omitempty"`
	Options  []string     `json:"options,omitempty" validate:"required_if=Type choice"`
}

// Questions is an ordered list persisted as JSON.
type Questions []Question

// Value marshals questions to JSON for persistence.
func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		q = Questions{}
	}
	return marshalJSON(q, "questions")
}

// Scan unmarshals questions from a JSON column.
func (q *Questions) Scan(value interface{}) error {
	return scanJSON(value, q, "questions")
}

// Questionnaire holds the active survey for one (institution, target role) pair.
type Questionnaire struct {
	ID            string     `db:"id" json:"id"`
	InstitutionID string     `db:"institution_id" json:"institution_id"`
	Title         string     `db:"title" json:"title"`
	TargetRole    TargetRole `db:"target_role" json:"target_role"`
	Questions     Questions  `db:"questions" json:"questions"`
	Active        bool       `db:"active" json:"active"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// QuestionnaireID returns the deterministic upsert key for a pair.
func QuestionnaireID(role TargetRole, institutionID string) string {
	return fmt.Sprintf("q_%s_%s", role, institutionID)
}

// Question looks up a question by id.
func (q *Questionnaire) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// QuestionnaireRequest replaces the questionnaire of one (institution, target role) pair.
type QuestionnaireRequest struct {
	InstitutionID string     `json:"institution_id" validate:"required"`
	Title         string     `json:"title" validate:"required"`
	TargetRole    TargetRole `json:"target_role" validate:"required,oneof=student teacher"`
	Questions     Questions  `json:"questions" validate:"required,min=1,dive"`
	Active        bool       `json:"active"`
}
