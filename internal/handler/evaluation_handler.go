package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type evaluationService interface {
	SaveSelfEval(ctx context.Context, teacherID string, req models.SelfEvalRequest) (*models.SelfEvaluation, error)
	GetSelfEval(ctx context.Context, teacherID string) (*models.SelfEvaluation, error)
	SaveQualitativeEval(ctx context.Context, evaluatorID string, req models.QualitativeEvalRequest) (*models.QualitativeEval, error)
	GetQualitativeEval(ctx context.Context, teacherID string) (*models.QualitativeEval, error)
}

type userLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// EvaluationHandler serves teacher self-evaluations and manager reviews.
type EvaluationHandler struct {
	service evaluationService
	users   userLookup
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(svc evaluationService, users userLookup) *EvaluationHandler {
	return &EvaluationHandler{service: svc, users: users}
}

// SaveSelfEval godoc
// @Summary Save own self-evaluation
// @Description Replaces the caller's activity report for the academic year
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body models.SelfEvalRequest true "Self evaluation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /self-evaluations [put]
func (h *EvaluationHandler) SaveSelfEval(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.SelfEvalRequest
	if !bindJSON(c, &req, "invalid self evaluation payload") {
		return
	}

	eval, err := h.service.SaveSelfEval(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, eval)
}

// GetSelfEval godoc
// @Summary Get self-evaluation
// @Tags Evaluations
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /self-evaluations/{teacherId} [get]
func (h *EvaluationHandler) GetSelfEval(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	eval, err := h.service.GetSelfEval(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canRead(c, claims, eval.TeacherID, eval.InstitutionID) {
		return
	}

	response.OK(c, eval)
}

// SaveQualitativeEval godoc
// @Summary Save qualitative review
// @Description Rates a teacher on punctuality, engagement, collaboration and compliance (0 to 5)
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body models.QualitativeEvalRequest true "Review"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /qualitative-evaluations [put]
func (h *EvaluationHandler) SaveQualitativeEval(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.QualitativeEvalRequest
	if !bindJSON(c, &req, "invalid qualitative evaluation payload") {
		return
	}

	teacher, err := h.users.Get(c.Request.Context(), req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	institutionID := ""
	if teacher.InstitutionID != nil {
		institutionID = *teacher.InstitutionID
	}
	if err := authorizeInstitution(claims, institutionID); err != nil {
		response.Error(c, err)
		return
	}

	eval, err := h.service.SaveQualitativeEval(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, eval)
}

// GetQualitativeEval godoc
// @Summary Get qualitative review
// @Tags Evaluations
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /qualitative-evaluations/{teacherId} [get]
func (h *EvaluationHandler) GetQualitativeEval(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	eval, err := h.service.GetQualitativeEval(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canRead(c, claims, eval.TeacherID, eval.InstitutionID) {
		return
	}

	response.OK(c, eval)
}

// canRead allows the evaluated teacher and the administrators of their institution.
func (h *EvaluationHandler) canRead(c *gin.Context, claims *models.JWTClaims, teacherID, institutionID string) bool {
	if claims.UserID == teacherID {
		return true
	}
	if !isAdministrator(claims) {
		response.Error(c, appErrors.ErrForbidden)
		return false
	}
	if err := authorizeInstitution(claims, institutionID); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
