package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
)

// InstitutionService manages tenants and their evaluation window.
type InstitutionService struct {
	institutions repository.Collection[models.Institution]
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewInstitutionService constructs an InstitutionService.
func NewInstitutionService(institutions repository.Collection[models.Institution], validate *validator.Validate, logger *zap.Logger) *InstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InstitutionService{
		institutions: institutions,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateInstitution stores a new tenant with the evaluation window closed.
func (s *InstitutionService) CreateInstitution(ctx context.Context, req models.InstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid institution payload")
	}
	inst := &models.Institution{
		ID:            newID(prefixInstitution),
		Name:          strings.TrimSpace(req.Name),
		Code:          strings.TrimSpace(req.Code),
		ManagerEmails: normalizeEmails(req.ManagerEmails),
		CreatedAt:     s.now(),
	}
	if err := s.institutions.Insert(ctx, inst); err != nil {
		return nil, storeError(err, "institution not found", "failed to create institution")
	}
	s.logger.Info("institution created", zap.String("institution_id", inst.ID))
	return inst, nil
}

// UpdateInstitution replaces the descriptive fields of a tenant.
func (s *InstitutionService) UpdateInstitution(ctx context.Context, id string, req models.InstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid institution payload")
	}
	inst, err := s.GetInstitution(ctx, id)
	if err != nil {
		return nil, err
	}
	inst.Name = strings.TrimSpace(req.Name)
	inst.Code = strings.TrimSpace(req.Code)
	inst.ManagerEmails = normalizeEmails(req.ManagerEmails)
	if err := s.institutions.Update(ctx, inst); err != nil {
		return nil, storeError(err, "institution not found", "failed to update institution")
	}
	return inst, nil
}

// SetEvaluationPeriod opens or closes survey submissions for the tenant.
func (s *InstitutionService) SetEvaluationPeriod(ctx context.Context, id string, req models.EvaluationPeriodRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid evaluation period payload")
	}
	inst, err := s.GetInstitution(ctx, id)
	if err != nil {
		return nil, err
	}
	inst.IsEvaluationOpen = *req.Open
	if name := strings.TrimSpace(req.PeriodName); name != "" {
		inst.EvaluationPeriodName = name
	}
	if err := s.institutions.Update(ctx, inst); err != nil {
		return nil, storeError(err, "institution not found", "failed to update evaluation period")
	}
	s.logger.Info("evaluation period changed",
		zap.String("institution_id", inst.ID),
		zap.Bool("open", inst.IsEvaluationOpen),
		zap.String("period", inst.EvaluationPeriodName),
	)
	return inst, nil
}

// ListInstitutions returns every tenant.
func (s *InstitutionService) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	items, err := s.institutions.List(ctx)
	if err != nil {
		return nil, storeError(err, "institution not found", "failed to list institutions")
	}
	return items, nil
}

// GetInstitution returns a tenant by id.
func (s *InstitutionService) GetInstitution(ctx context.Context, id string) (*models.Institution, error) {
	inst, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "institution not found", "failed to load institution")
	}
	return inst, nil
}

// DeleteInstitution removes the tenant record only. Users, subjects and
// questionnaires pointing at it are left in place.
func (s *InstitutionService) DeleteInstitution(ctx context.Context, id string) error {
	if err := s.institutions.Delete(ctx, id); err != nil {
		return storeError(err, "institution not found", "failed to delete institution")
	}
	s.logger.Info("institution deleted", zap.String("institution_id", id))
	return nil
}

func normalizeEmails(emails models.StringList) models.StringList {
	out := make(models.StringList, 0, len(emails))
	for _, email := range emails {
		if e := normalizeEmail(email); e != "" {
			out = append(out, e)
		}
	}
	return out
}
