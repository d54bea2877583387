package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	"github.com/noah-isme/teacher-eval-api/pkg/export"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService builds roster and performance datasets for an institution.
type ExportService struct {
	institutions repository.Collection[models.Institution]
	users        repository.Collection[models.User]
	subjects     repository.Collection[models.Subject]
	scores       repository.Collection[models.CombinedScore]
	csv          datasetRenderer
	pdf          datasetRenderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	institutions repository.Collection[models.Institution],
	users repository.Collection[models.User],
	subjects repository.Collection[models.Subject],
	scores repository.Collection[models.CombinedScore],
	csv datasetRenderer,
	pdf datasetRenderer,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		institutions: institutions,
		users:        users,
		subjects:     subjects,
		scores:       scores,
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
	}
}

var (
	teacherHeaders = []string{"id", "name", "email", "category", "subjects", "must_change_password"}
	studentHeaders = []string{"id", "name", "email", "role", "course", "level", "class_groups"}
	reportHeaders  = []string{"teacher", "email", "student_score", "self_eval_score", "institutional_score", "final_score", "final_grade", "responses"}
)

// TeachersCSV renders the teacher roster.
func (s *ExportService) TeachersCSV(ctx context.Context, institutionID string) ([]byte, error) {
	data, err := s.teacherRoster(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return s.render(s.csv, data)
}

// StudentsCSV renders the student roster, class heads included.
func (s *ExportService) StudentsCSV(ctx context.Context, institutionID string) ([]byte, error) {
	data, err := s.studentRoster(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return s.render(s.csv, data)
}

// ReportCSV renders the per-teacher performance report.
func (s *ExportService) ReportCSV(ctx context.Context, institutionID string) ([]byte, error) {
	data, err := s.performanceReport(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return s.render(s.csv, data)
}

// ReportPDF renders the performance report as a printable document.
func (s *ExportService) ReportPDF(ctx context.Context, institutionID string) ([]byte, error) {
	data, err := s.performanceReport(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return s.render(s.pdf, data)
}

func (s *ExportService) teacherRoster(ctx context.Context, institutionID string) (export.Dataset, error) {
	inst, err := s.institution(ctx, institutionID)
	if err != nil {
		return export.Dataset{}, err
	}
	teachers, err := s.users.List(ctx, repository.Eq("institution_id", institutionID), repository.Eq("role", models.RoleTeacher))
	if err != nil {
		return export.Dataset{}, storeError(err, "user not found", "failed to list teachers")
	}
	subjects, err := s.subjects.List(ctx, repository.Eq("institution_id", institutionID))
	if err != nil {
		return export.Dataset{}, storeError(err, "subject not found", "failed to list subjects")
	}
	taught := make(map[string][]string)
	for _, subject := range subjects {
		if subject.TeacherID != nil {
			taught[*subject.TeacherID] = append(taught[*subject.TeacherID], subject.Name)
		}
	}

	rows := make([]map[string]string, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, map[string]string{
			"id":                   t.ID,
			"name":                 t.Name,
			"email":                t.Email,
			"category":             t.Category,
			"subjects":             strings.Join(taught[t.ID], "; "),
			"must_change_password": strconv.FormatBool(t.MustChangePassword),
		})
	}
	return export.Dataset{Title: "Teachers - " + inst.Name, Headers: teacherHeaders, Rows: rows}, nil
}

func (s *ExportService) studentRoster(ctx context.Context, institutionID string) (export.Dataset, error) {
	inst, err := s.institution(ctx, institutionID)
	if err != nil {
		return export.Dataset{}, err
	}
	members, err := s.users.List(ctx, repository.Eq("institution_id", institutionID))
	if err != nil {
		return export.Dataset{}, storeError(err, "user not found", "failed to list students")
	}

	rows := make([]map[string]string, 0, len(members))
	for _, u := range members {
		if u.Role != models.RoleStudent && u.Role != models.RoleClassHead {
			continue
		}
		rows = append(rows, map[string]string{
			"id":           u.ID,
			"name":         u.Name,
			"email":        u.Email,
			"role":         string(u.Role),
			"course":       u.Course,
			"level":        u.Level,
			"class_groups": strings.Join(u.ClassGroups, "; "),
		})
	}
	return export.Dataset{Title: "Students - " + inst.Name, Headers: studentHeaders, Rows: rows}, nil
}

func (s *ExportService) performanceReport(ctx context.Context, institutionID string) (export.Dataset, error) {
	inst, err := s.institution(ctx, institutionID)
	if err != nil {
		return export.Dataset{}, err
	}
	scores, err := s.scores.List(ctx, repository.Eq("institution_id", institutionID))
	if err != nil {
		return export.Dataset{}, storeError(err, "score not found", "failed to list scores")
	}
	sortScores(scores)
	teachers, err := s.users.List(ctx, repository.Eq("institution_id", institutionID), repository.Eq("role", models.RoleTeacher))
	if err != nil {
		return export.Dataset{}, storeError(err, "user not found", "failed to list teachers")
	}
	byID := make(map[string]models.User, len(teachers))
	for _, t := range teachers {
		byID[t.ID] = t
	}

	rows := make([]map[string]string, 0, len(scores))
	for _, sc := range scores {
		teacher, ok := byID[sc.TeacherID]
		name := teacher.Name
		if !ok {
			name = sc.TeacherID
		}
		rows = append(rows, map[string]string{
			"teacher":             name,
			"email":               teacher.Email,
			"student_score":       formatScore(sc.StudentScore),
			"self_eval_score":     formatScore(sc.SelfEvalScore),
			"institutional_score": formatScore(sc.InstitutionalScore),
			"final_score":         formatScore(sc.FinalScore),
			"final_grade":         formatScore(sc.FinalGrade),
			"responses":           strconv.Itoa(sc.ResponseCount),
		})
	}

	subtitle := inst.EvaluationPeriodName
	if subtitle != "" {
		subtitle = "Period: " + subtitle
	}
	return export.Dataset{
		Title:    "Teacher performance - " + inst.Name,
		Subtitle: subtitle,
		Headers:  reportHeaders,
		Rows:     rows,
	}, nil
}

func (s *ExportService) institution(ctx context.Context, id string) (*models.Institution, error) {
	inst, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "institution not found", "failed to load institution")
	}
	return inst, nil
}

func (s *ExportService) render(r datasetRenderer, data export.Dataset) ([]byte, error) {
	out, err := r.Render(data)
	if err != nil {
		s.logger.Error("render export", zap.String("title", data.Title), zap.Error(err))
		return nil, fmt.Errorf("render %q: %w", data.Title, err)
	}
	return out, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
