package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

// SubjectService manages course offerings.
type SubjectService struct {
	subjects  repository.Collection[models.Subject]
	users     repository.Collection[models.User]
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(subjects repository.Collection[models.Subject], users repository.Collection[models.User], validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{
		subjects:  subjects,
		users:     users,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AssignSubject creates a subject taught by at most one teacher of the same institution.
func (s *SubjectService) AssignSubject(ctx context.Context, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	var teacherID *string
	if req.TeacherID != nil && strings.TrimSpace(*req.TeacherID) != "" {
		id := strings.TrimSpace(*req.TeacherID)
		teacher, err := s.users.Get(ctx, id)
		if err != nil {
			return nil, storeError(err, "teacher not found", "failed to load teacher")
		}
		if teacher.Role != models.RoleTeacher {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assigned user is not a teacher")
		}
		if !teacher.BelongsTo(req.InstitutionID) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher belongs to another institution")
		}
		teacherID = &id
	}

	subject := &models.Subject{
		ID:            newID(prefixSubject),
		Name:          strings.TrimSpace(req.Name),
		Code:          strings.TrimSpace(req.Code),
		InstitutionID: req.InstitutionID,
		TeacherID:     teacherID,
		Course:        req.Course,
		Level:         req.Level,
		ClassGroup:    req.ClassGroup,
		Shift:         req.Shift,
		Modality:      req.Modality,
		CreatedAt:     s.now(),
	}
	if err := s.subjects.Insert(ctx, subject); err != nil {
		return nil, storeError(err, "subject not found", "failed to create subject")
	}
	return subject, nil
}

// ListSubjects returns subjects matching the filter.
func (s *SubjectService) ListSubjects(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var conds []repository.Condition
	if filter.InstitutionID != "" {
		conds = append(conds, repository.Eq("institution_id", filter.InstitutionID))
	}
	if filter.TeacherID != "" {
		conds = append(conds, repository.Eq("teacher_id", filter.TeacherID))
	}
	items, err := s.subjects.List(ctx, conds...)
	if err != nil {
		return nil, storeError(err, "subject not found", "failed to list subjects")
	}
	return items, nil
}

// GetSubject returns a subject by id.
func (s *SubjectService) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "subject not found", "failed to load subject")
	}
	return subject, nil
}

// DeleteSubject hard deletes a subject. Responses referencing it are kept.
func (s *SubjectService) DeleteSubject(ctx context.Context, id string) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		return storeError(err, "subject not found", "failed to delete subject")
	}
	return nil
}
