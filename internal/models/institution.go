package models

import "time"

// Institution is a tenant owning users, subjects and questionnaires by foreign key.
type Institution struct {
	ID                   string     `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Code                 string     `db:"code" json:"code"`
	ManagerEmails        StringList `db:"manager_emails" json:"manager_emails"`
	IsEvaluationOpen     bool       `db:"is_evaluation_open" json:"is_evaluation_open"`
	EvaluationPeriodName string     `db:"evaluation_period_name" json:"evaluation_period_name"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// InstitutionRequest creates or updates an institution.
type InstitutionRequest struct {
	Name          string     `json:"name" validate:"required"`
	Code          string     `json:"code"`
	ManagerEmails StringList `json:"manager_emails" validate:"omitempty,dive,email"`
}

// EvaluationPeriodRequest opens or closes the evaluation window.
type EvaluationPeriodRequest struct {
	Open       *bool  `json:"open" validate:"required"`
	PeriodName string `json:"period_name"`
}
