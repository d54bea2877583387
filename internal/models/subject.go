package models

import "time"

// Subject is a course offering taught by at most one teacher.
type Subject struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Code          string    `db:"code" json:"code"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	TeacherID     *string   `db:"teacher_id" json:"teacher_id"`
	Course        string    `db:"course" json:"course"`
	Level         string    `db:"level" json:"level"`
	ClassGroup    string    `db:"class_group" json:"class_group"`
	Shift         string    `db:"shift" json:"shift"`
	Modality      string    `db:"modality" json:"modality"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SubjectRequest assigns a course offering to an optional teacher.
type SubjectRequest struct {
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code"`
	InstitutionID string  `json:"institution_id" validate:"required"`
	TeacherID     *string `json:"teacher_id"`
	Course        string  `json:"course"`
	Level         string  `json:"level"`
	ClassGroup    string  `json:"class_group"`
	Shift         string  `json:"shift"`
	Modality      string  `json:"modality"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	InstitutionID string
	TeacherID     string
}
