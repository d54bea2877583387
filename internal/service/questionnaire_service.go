package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

// QuestionnaireService keeps one questionnaire per (institution, target role).
type QuestionnaireService struct {
	questionnaires repository.Collection[models.Questionnaire]
	institutions   repository.Collection[models.Institution]
	validator      *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuestionnaireService constructs a QuestionnaireService.
func NewQuestionnaireService(questionnaires repository.Collection[models.Questionnaire], institutions repository.Collection[models.Institution], validate *validator.Validate, logger *zap.Logger) *QuestionnaireService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QuestionnaireService{
		questionnaires: questionnaires,
		institutions:   institutions,
		validator:      validate,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SaveQuestionnaire upserts under the deterministic id of the pair, replacing
// any previous version.
func (s *QuestionnaireService) SaveQuestionnaire(ctx context.Context, req models.QuestionnaireRequest) (*models.Questionnaire, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid questionnaire payload")
	}
	seen := make(map[string]struct{}, len(req.Questions))
	for _, q := range req.Questions {
		if _, dup := seen[q.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = struct{}{}
	}
	if _, err := s.institutions.Get(ctx, req.InstitutionID); err != nil {
		return nil, storeError(err, "institution not found", "failed to load institution")
	}

	questionnaire := &models.Questionnaire{
		ID:            models.QuestionnaireID(req.TargetRole, req.InstitutionID),
		InstitutionID: req.InstitutionID,
		Title:         req.Title,
		TargetRole:    req.TargetRole,
		Questions:     req.Questions,
		Active:        req.Active,
		UpdatedAt:     s.now(),
	}
	if err := s.questionnaires.Upsert(ctx, questionnaire); err != nil {
		return nil, storeError(err, "questionnaire not found", "failed to save questionnaire")
	}
	s.logger.Info("questionnaire saved",
		zap.String("questionnaire_id", questionnaire.ID),
		zap.Int("questions", len(questionnaire.Questions)),
	)
	return questionnaire, nil
}

// GetQuestionnaire returns the questionnaire of the pair.
func (s *QuestionnaireService) GetQuestionnaire(ctx context.Context, institutionID string, role models.TargetRole) (*models.Questionnaire, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown target role")
	}
	return s.GetByID(ctx, models.QuestionnaireID(role, institutionID))
}

// GetByID returns a questionnaire by id.
func (s *QuestionnaireService) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	questionnaire, err := s.questionnaires.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "questionnaire not found", "failed to load questionnaire")
	}
	return questionnaire, nil
}
