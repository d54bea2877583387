package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

// EvaluationService stores the single live self-evaluation and qualitative
// review of each teacher.
type EvaluationService struct {
	selfEvals   repository.Collection[models.SelfEvaluation]
	qualitative repository.Collection[models.QualitativeEval]
	users       repository.Collection[models.User]
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(selfEvals repository.Collection[models.SelfEvaluation], qualitative repository.Collection[models.QualitativeEval], users repository.Collection[models.User], validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EvaluationService{
		selfEvals:   selfEvals,
		qualitative: qualitative,
		users:       users,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SaveSelfEval upserts the teacher's self-report.
func (s *EvaluationService) SaveSelfEval(ctx context.Context, teacherID string, req models.SelfEvalRequest) (*models.SelfEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid self evaluation payload")
	}
	teacher, err := s.teacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	eval := &models.SelfEvaluation{
		ID:             models.SelfEvalID(teacher.ID),
		TeacherID:      teacher.ID,
		InstitutionID:  *teacher.InstitutionID,
		Category:       req.Category,
		ContractRegime: req.ContractRegime,
		AcademicYear:   req.AcademicYear,
		Activities:     req.Activities,
		UpdatedAt:      s.now(),
	}
	if eval.Category == "" {
		eval.Category = teacher.Category
	}
	if err := s.selfEvals.Upsert(ctx, eval); err != nil {
		return nil, storeError(err, "self evaluation not found", "failed to save self evaluation")
	}
	return eval, nil
}

// GetSelfEval returns the teacher's self-report.
func (s *EvaluationService) GetSelfEval(ctx context.Context, teacherID string) (*models.SelfEvaluation, error) {
	eval, err := s.selfEvals.FindOne(ctx, repository.Eq("teacher_id", teacherID))
	if err != nil {
		return nil, storeError(err, "self evaluation not found", "failed to load self evaluation")
	}
	return eval, nil
}

// SaveQualitativeEval upserts the manager's review of a teacher.
func (s *EvaluationService) SaveQualitativeEval(ctx context.Context, evaluatorID string, req models.QualitativeEvalRequest) (*models.QualitativeEval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "ratings must be between 0 and 5")
	}
	teacher, err := s.teacher(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	eval := &models.QualitativeEval{
		ID:            models.QualitativeEvalID(teacher.ID),
		TeacherID:     teacher.ID,
		InstitutionID: *teacher.InstitutionID,
		EvaluatorID:   evaluatorID,
		Punctuality:   req.Punctuality,
		Engagement:    req.Engagement,
		Collaboration: req.Collaboration,
		Compliance:    req.Compliance,
		Comments:      req.Comments,
		UpdatedAt:     s.now(),
	}
	if err := s.qualitative.Upsert(ctx, eval); err != nil {
		return nil, storeError(err, "qualitative evaluation not found", "failed to save qualitative evaluation")
	}
	return eval, nil
}

// GetQualitativeEval returns the review of a teacher.
func (s *EvaluationService) GetQualitativeEval(ctx context.Context, teacherID string) (*models.QualitativeEval, error) {
	eval, err := s.qualitative.FindOne(ctx, repository.Eq("teacher_id", teacherID))
	if err != nil {
		return nil, storeError(err, "qualitative evaluation not found", "failed to load qualitative evaluation")
	}
	return eval, nil
}

func (s *EvaluationService) teacher(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}
	if user.Role != models.RoleTeacher || user.InstitutionID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a teacher")
	}
	return user, nil
}
