package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AnswerValue holds either a number or a string.
type AnswerValue struct {
	Number *float64
	Text   string
}

// NumberAnswer builds a numeric answer value.
func NumberAnswer(v float64) AnswerValue {
	return AnswerValue{Number: &v}
}

// TextAnswer builds a textual answer value.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Text: s}
}

// Answered reports whether a value was provided.
func (v AnswerValue) Answered() bool {
	return v.Number != nil || v.Text != ""
}

// Float returns the numeric form of the value. Numeric strings are accepted.
func (v AnswerValue) Float() (float64, bool) {
	if v.Number != nil {
		return *v.Number, true
	}
	if v.Text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MarshalJSON writes a JSON number or string.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	if v.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON number, string or null.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = AnswerValue{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &v.Text)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("answer value must be a number or string: %w", err)
	}
	v.Number = &f
	return nil
}

// Answer pairs a question with its value.
type Answer struct {
	QuestionID string      `json:"question_id" validate:"required"`
	Value      AnswerValue `json:"value"`
}

// Answers is an ordered list persisted as JSON.
type Answers []Answer

// Value marshals answers to JSON for persistence.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		a = Answers{}
	}
	return marshalJSON(a, "answers")
}

// Scan unmarshals answers from a JSON column.
func (a *Answers) Scan(value interface{}) error {
	return scanJSON(value, a, "answers")
}

// StudentResponse is one immutable survey submission about a teacher.
type StudentResponse struct {
	ID              string    `db:"id" json:"id"`
	InstitutionID   string    `db:"institution_id" json:"institution_id"`
	QuestionnaireID string    `db:"questionnaire_id" json:"questionnaire_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	SubmitterID     string    `db:"submitter_id" json:"submitter_id"`
	Answers         Answers   `db:"answers" json:"answers"`
	SubmittedAt     time.Time `db:"submitted_at" json:"submitted_at"`
}

// ResponseView omits the submitter so read endpoints stay anonymous.
type ResponseView struct {
	ID              string    `json:"id"`
	InstitutionID   string    `json:"institution_id"`
	QuestionnaireID string    `json:"questionnaire_id"`
	SubjectID       string    `json:"subject_id"`
	TeacherID       string    `json:"teacher_id"`
	Answers         Answers   `json:"answers"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// View returns the anonymous representation of the response.
func (r *StudentResponse) View() ResponseView {
	return ResponseView{
		ID:              r.ID,
		InstitutionID:   r.InstitutionID,
		QuestionnaireID: r.QuestionnaireID,
		SubjectID:       r.SubjectID,
		TeacherID:       r.TeacherID,
		Answers:         r.Answers,
		SubmittedAt:     r.SubmittedAt,
	}
}

// SubmitResponseRequest is a student's survey submission.
type SubmitResponseRequest struct {
	QuestionnaireID string  `json:"questionnaire_id" validate:"required"`
	SubjectID       string  `json:"subject_id" validate:"required"`
	Answers         Answers `json:"answers" validate:"required,min=1,dive"`
}

// ResponseFilter narrows response listings.
type ResponseFilter struct {
	InstitutionID string
	TeacherID     string
	SubjectID     string
}
