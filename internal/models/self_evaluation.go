package models

import (
	"database/sql/driver"
	"time"
)

// SelfEvalMaxScore caps the self-evaluation component.
const SelfEvalMaxScore = 80.0

// SelfEvalActivities are the activity counters a teacher reports for the academic year.
type SelfEvalActivities struct {
	TeachingHoursUndergrad    float64 `json:"teaching_hours_undergrad" validate:"gte=0"`
	TeachingHoursPostgrad     float64 `json:"teaching_hours_postgrad" validate:"gte=0"`
	CoursesCoordinated        float64 `json:"courses_coordinated" validate:"gte=0"`
	SupervisedUndergradTheses float64 `json:"supervised_undergrad_theses" validate:"gte=0"`
	SupervisedMastersTheses   float64 `json:"supervised_masters_theses" validate:"gte=0"`
	SupervisedDoctoralTheses  float64 `json:"supervised_doctoral_theses" validate:"gte=0"`
	ExaminingBoards           float64 `json:"examining_boards" validate:"gte=0"`
	PublicationsNational      float64 `json:"publications_national" validate:"gte=0"`
	PublicationsInternational float64 `json:"publications_international" validate:"gte=0"`
	BooksPublished            float64 `json:"books_published" validate:"gte=0"`
	ConferencePresentations   float64 `json:"conference_presentations" validate:"gte=0"`
	ResearchProjects          float64 `json:"research_projects" validate:"gte=0"`
	ExtensionProjects         float64 `json:"extension_projects" validate:"gte=0"`
	ManagementRoles           float64 `json:"management_roles" validate:"gte=0"`
	CommitteeMemberships      float64 `json:"committee_memberships" validate:"gte=0"`
	TrainingCoursesAttended   float64 `json:"training_courses_attended" validate:"gte=0"`
}

// Value marshals activities to JSON for persistence.
func (a SelfEvalActivities) Value() (driver.Value, error) {
	return marshalJSON(a, "self evaluation activities")
}

// Scan unmarshals activities from a JSON column.
func (a *SelfEvalActivities) Scan(value interface{}) error {
	return scanJSON(value, a, "self evaluation activities")
}

// SelfEvalRule awards Points per unit of one counter, up to Cap.
type SelfEvalRule struct {
	Field  string
	Label  string
	Points float64
	Cap    float64
	Count  func(SelfEvalActivities) float64
}

// SelfEvalPointTable is the official per-field point table. Field caps add up
// to more than SelfEvalMaxScore, so the total is capped separately.
var SelfEvalPointTable = []SelfEvalRule{
	{"teaching_hours_undergrad", "Undergraduate teaching (weekly hours)", 1, 12, func(a SelfEvalActivities) float64 { return a.TeachingHoursUndergrad }},
	{"teaching_hours_postgrad", "Postgraduate teaching (weekly hours)", 1.5, 9, func(a SelfEvalActivities) float64 { return a.TeachingHoursPostgrad }},
	{"courses_coordinated", "Course coordination", 2, 6, func(a SelfEvalActivities) float64 { return a.CoursesCoordinated }},
	{"supervised_undergrad_theses", "Undergraduate theses supervised", 1, 6, func(a SelfEvalActivities) float64 { return a.SupervisedUndergradTheses }},
	{"supervised_masters_theses", "Master's dissertations supervised", 2, 8, func(a SelfEvalActivities) float64 { return a.SupervisedMastersTheses }},
	{"supervised_doctoral_theses", "Doctoral theses supervised", 4, 8, func(a SelfEvalActivities) float64 { return a.SupervisedDoctoralTheses }},
	{"examining_boards", "Examining boards", 0.5, 3, func(a SelfEvalActivities) float64 { return a.ExaminingBoards }},
	{"publications_national", "National publications", 2, 8, func(a SelfEvalActivities) float64 { return a.PublicationsNational }},
	{"publications_international", "International publications", 3, 12, func(a SelfEvalActivities) float64 { return a.PublicationsInternational }},
	{"books_published", "Books published", 4, 8, func(a SelfEvalActivities) float64 { return a.BooksPublished }},
	{"conference_presentations", "Conference presentations", 1, 4, func(a SelfEvalActivities) float64 { return a.ConferencePresentations }},
	{"research_projects", "Research projects", 2, 6, func(a SelfEvalActivities) float64 { return a.ResearchProjects }},
	{"extension_projects", "Extension projects", 1, 4, func(a SelfEvalActivities) float64 { return a.ExtensionProjects }},
	{"management_roles", "Management roles", 2, 4, func(a SelfEvalActivities) float64 { return a.ManagementRoles }},
	{"committee_memberships", "Committee memberships", 0.5, 2, func(a SelfEvalActivities) float64 { return a.CommitteeMemberships }},
	{"training_courses_attended", "Training courses attended", 0.5, 2, func(a SelfEvalActivities) float64 { return a.TrainingCoursesAttended }},
}

// SelfEvaluation is the single live self-report of a teacher.
type SelfEvaluation struct {
	ID             string             `db:"id" json:"id"`
	TeacherID      string             `db:"teacher_id" json:"teacher_id"`
	InstitutionID  string             `db:"institution_id" json:"institution_id"`
	Category       string             `db:"category" json:"category"`
	ContractRegime string             `db:"contract_regime" json:"contract_regime"`
	AcademicYear   string             `db:"academic_year" json:"academic_year"`
	Activities     SelfEvalActivities `db:"activities" json:"activities"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
}

// SelfEvalRequest is the self-report a teacher submits.
type SelfEvalRequest struct {
	Category       string             `json:"category"`
	ContractRegime string             `json:"contract_regime"`
	AcademicYear   string             `json:"academic_year" validate:"required"`
	Activities     SelfEvalActivities `json:"activities"`
}

// SelfEvalID is the deterministic id of a teacher's self-evaluation.
func SelfEvalID(teacherID string) string {
	return "se_" + teacherID
}
