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

// SurveyConfig toggles submission policies.
type SurveyConfig struct {
	AllowRepeat bool
}

// SurveyService records student survey submissions.
type SurveyService struct {
	questionnaires repository.Collection[models.Questionnaire]
	subjects       repository.Collection[models.Subject]
	institutions   repository.Collection[models.Institution]
	responses      repository.Collection[models.StudentResponse]
	validator      *validator.Validate
	logger         *zap.Logger
	config         SurveyConfig
	now            func() time.Time
}

// NewSurveyService constructs a SurveyService.
func NewSurveyService(
	questionnaires repository.Collection[models.Questionnaire],
	subjects repository.Collection[models.Subject],
	institutions repository.Collection[models.Institution],
	responses repository.Collection[models.StudentResponse],
	validate *validator.Validate,
	logger *zap.Logger,
	config SurveyConfig,
) *SurveyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SurveyService{
		questionnaires: questionnaires,
		subjects:       subjects,
		institutions:   institutions,
		responses:      responses,
		validator:      validate,
		logger:         logger,
		config:         config,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CheckCompleteness reports whether every question of q is answered exactly once.
func CheckCompleteness(q *models.Questionnaire, answers models.Answers) error {
	incomplete := appErrors.ErrIncompleteSubmission
	if len(answers) != len(q.Questions) {
		return incomplete
	}
	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := q.Question(a.QuestionID); !ok || !a.Value.Answered() {
			return incomplete
		}
		answered[a.QuestionID] = struct{}{}
	}
	if len(answered) != len(q.Questions) {
		return incomplete
	}
	return nil
}

// SubmitResponse creates one immutable response. Teacher and institution are
// taken from the subject.
func (s *SurveyService) SubmitResponse(ctx context.Context, submitterID string, req models.SubmitResponseRequest) (*models.ResponseView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid survey submission")
	}

	questionnaire, err := s.questionnaires.Get(ctx, req.QuestionnaireID)
	if err != nil {
		return nil, storeError(err, "questionnaire not found", "failed to load questionnaire")
	}
	if !questionnaire.Active {
		return nil, appErrors.Clone(appErrors.ErrEvaluationClosed, "questionnaire is not active")
	}
	subject, err := s.subjects.Get(ctx, req.SubjectID)
	if err != nil {
		return nil, storeError(err, "subject not found", "failed to load subject")
	}
	if subject.InstitutionID != questionnaire.InstitutionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject and questionnaire belong to different institutions")
	}
	if subject.TeacherID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject has no assigned teacher")
	}

	inst, err := s.institutions.Get(ctx, subject.InstitutionID)
	if err != nil {
		return nil, storeError(err, "institution not found", "failed to load institution")
	}
	if !inst.IsEvaluationOpen {
		return nil, appErrors.ErrEvaluationClosed
	}

	if !s.config.AllowRepeat {
		count, err := s.responses.Count(ctx,
			repository.Eq("submitter_id", submitterID),
			repository.Eq("subject_id", subject.ID),
		)
		if err != nil {
			return nil, storeError(err, "response not found", "failed to check previous submissions")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "survey already submitted for this subject")
		}
	}

	resp := &models.StudentResponse{
		ID:              newID(prefixResponse),
		InstitutionID:   subject.InstitutionID,
		QuestionnaireID: questionnaire.ID,
		SubjectID:       subject.ID,
		TeacherID:       *subject.TeacherID,
		SubmitterID:     submitterID,
		Answers:         req.Answers,
		SubmittedAt:     s.now(),
	}
	if err := s.responses.Insert(ctx, resp); err != nil {
		return nil, storeError(err, "response not found", "failed to record response")
	}
	s.logger.Info("survey response recorded",
		zap.String("response_id", resp.ID),
		zap.String("subject_id", resp.SubjectID),
	)
	view := resp.View()
	return &view, nil
}

// ListResponses returns anonymous views of the matching responses.
func (s *SurveyService) ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.ResponseView, error) {
	var conds []repository.Condition
	if filter.InstitutionID != "" {
		conds = append(conds, repository.Eq("institution_id", filter.InstitutionID))
	}
	if filter.TeacherID != "" {
		conds = append(conds, repository.Eq("teacher_id", filter.TeacherID))
	}
	if filter.SubjectID != "" {
		conds = append(conds, repository.Eq("subject_id", filter.SubjectID))
	}
	items, err := s.responses.List(ctx, conds...)
	if err != nil {
		return nil, storeError(err, "response not found", "failed to list responses")
	}
	views := make([]models.ResponseView, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	return views, nil
}
