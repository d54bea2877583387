package models

import "time"

// Component ceilings of the combined score.
const (
	StudentScoreMax       = 12.0
	InstitutionalScoreMax = 8.0
	FinalScoreMax         = StudentScoreMax + SelfEvalMaxScore + InstitutionalScoreMax
	// GradeScale is the presentation scale of FinalGrade.
	GradeScale = 20.0
)

// CombinedScore is the latest aggregate for one teacher. Recalculation overwrites it.
type CombinedScore struct {
	ID                 string    `db:"id" json:"id"`
	TeacherID          string    `db:"teacher_id" json:"teacher_id"`
	InstitutionID      string    `db:"institution_id" json:"institution_id"`
	StudentScore       float64   `db:"student_score" json:"student_score"`
	SelfEvalScore      float64   `db:"self_eval_score" json:"self_eval_score"`
	InstitutionalScore float64   `db:"institutional_score" json:"institutional_score"`
	FinalScore         float64   `db:"final_score" json:"final_score"`
	FinalGrade         float64   `db:"final_grade" json:"final_grade"`
	ResponseCount      int       `db:"response_count" json:"response_count"`
	LastCalculated     time.Time `db:"last_calculated" json:"last_calculated"`
}
