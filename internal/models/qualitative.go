package models

import "time"

// QualitativeMaxRating is the top of each qualitative criterion.
const QualitativeMaxRating = 5

// QualitativeEval is the manager's institutional review of a teacher.
type QualitativeEval struct {
	ID            string    `db:"id" json:"id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	EvaluatorID   string    `db:"evaluator_id" json:"evaluator_id"`
	Punctuality   int       `db:"punctuality" json:"punctuality"`
	Engagement    int       `db:"engagement" json:"engagement"`
	Collaboration int       `db:"collaboration" json:"collaboration"`
	Compliance    int       `db:"compliance" json:"compliance"`
	Comments      string    `db:"comments" json:"comments"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Ratings returns the criteria in a fixed order.
func (q *QualitativeEval) Ratings() []int {
	return []int{q.Punctuality, q.Engagement, q.Collaboration, q.Compliance}
}

// QualitativeEvalRequest is the manager's review payload.
type QualitativeEvalRequest struct {
	TeacherID     string `json:"teacher_id" validate:"required"`
	Punctuality   int    `json:"punctuality" validate:"gte=0,lte=5"`
	Engagement    int    `json:"engagement" validate:"gte=0,lte=5"`
	Collaboration int    `json:"collaboration" validate:"gte=0,lte=5"`
	Compliance    int    `json:"compliance" validate:"gte=0,lte=5"`
	Comments      string `json:"comments"`
}

// QualitativeEvalID is the deterministic id of a teacher's review.
func QualitativeEvalID(teacherID string) string {
	return "qe_" + teacherID
}
