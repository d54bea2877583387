package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/service"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type surveyService interface {
	SubmitResponse(ctx context.Context, submitterID string, req models.SubmitResponseRequest) (*models.ResponseView, error)
	ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.ResponseView, error)
}

type questionnaireLookup interface {
	GetByID(ctx context.Context, id string) (*models.Questionnaire, error)
}

// ResponseHandler accepts survey submissions and lists them anonymously.
type ResponseHandler struct {
	survey         surveyService
	questionnaires questionnaireLookup
}

// NewResponseHandler constructs a response handler.
func NewResponseHandler(survey surveyService, questionnaires questionnaireLookup) *ResponseHandler {
	return &ResponseHandler{survey: survey, questionnaires: questionnaires}
}

// Submit godoc
// @Summary Submit survey
// @Description Records one evaluation of the teacher of a subject. Every question must be answered.
// @Tags Responses
// @Accept json
// @Produce json
// @Param payload body models.SubmitResponseRequest true "Submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /responses [post]
func (h *ResponseHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.SubmitResponseRequest
	if !bindJSON(c, &req, "invalid survey submission") {
		return
	}

	questionnaire, err := h.questionnaires.GetByID(c.Request.Context(), req.QuestionnaireID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := authorizeInstitution(claims, questionnaire.InstitutionID); err != nil {
		response.Error(c, err)
		return
	}
	if !questionnaire.TargetRole.Accepts(claims.Role) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "questionnaire is meant for another audience"))
		return
	}
	if err := service.CheckCompleteness(questionnaire, req.Answers); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.survey.SubmitResponse(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, view)
}

// List godoc
// @Summary List responses
// @Description Submitters are never included
// @Tags Responses
// @Produce json
// @Param institution_id query string false "Institution ID"
// @Param teacher_id query string false "Teacher ID"
// @Param subject_id query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /responses [get]
func (h *ResponseHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	institutionID, err := scopeInstitution(claims, c.Query("institution_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	views, err := h.survey.ListResponses(c.Request.Context(), models.ResponseFilter{
		InstitutionID: institutionID,
		TeacherID:     c.Query("teacher_id"),
		SubjectID:     c.Query("subject_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, views)
}
