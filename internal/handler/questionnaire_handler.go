package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type questionnaireService interface {
	SaveQuestionnaire(ctx context.Context, req models.QuestionnaireRequest) (*models.Questionnaire, error)
	GetQuestionnaire(ctx context.Context, institutionID string, role models.TargetRole) (*models.Questionnaire, error)
	GetByID(ctx context.Context, id string) (*models.Questionnaire, error)
}

// QuestionnaireHandler exposes the survey definition endpoints.
type QuestionnaireHandler struct {
	service questionnaireService
}

// NewQuestionnaireHandler constructs a questionnaire handler.
func NewQuestionnaireHandler(svc questionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: svc}
}

// Save godoc
// @Summary Save questionnaire
// @Description Creates or replaces the questionnaire of an (institution, target role) pair
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Param payload body models.QuestionnaireRequest true "Questionnaire payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /questionnaires [put]
func (h *QuestionnaireHandler) Save(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.QuestionnaireRequest
	if !bindJSON(c, &req, "invalid questionnaire payload") {
		return
	}
	if err := authorizeInstitution(claims, req.InstitutionID); err != nil {
		response.Error(c, err)
		return
	}

	questionnaire, err := h.service.SaveQuestionnaire(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, questionnaire)
}

// Get godoc
// @Summary Get questionnaire
// @Tags Questionnaires
// @Produce json
// @Param institution_id query string false "Institution ID, defaults to the caller's"
// @Param target_role query string true "student or teacher"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	institutionID, err := scopeInstitution(claims, c.Query("institution_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	questionnaire, err := h.service.GetQuestionnaire(c.Request.Context(), institutionID, models.TargetRole(c.Query("target_role")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, questionnaire)
}
