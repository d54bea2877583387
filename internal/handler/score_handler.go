package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type scoringService interface {
	CalculateScores(ctx context.Context, institutionID string) ([]models.CombinedScore, error)
	ListScores(ctx context.Context, institutionID string) ([]models.CombinedScore, error)
}

// ScoreHandler triggers and lists combined teacher scores.
type ScoreHandler struct {
	service scoringService
}

// NewScoreHandler constructs a score handler.
func NewScoreHandler(svc scoringService) *ScoreHandler {
	return &ScoreHandler{service: svc}
}

// Calculate godoc
// @Summary Recalculate scores
// @Description Recomputes and overwrites the combined score of every teacher of the institution
// @Tags Scores
// @Produce json
// @Param institution_id query string false "Institution ID, defaults to the caller's"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scores/calculate [post]
func (h *ScoreHandler) Calculate(c *gin.Context) {
	institutionID, ok := h.institution(c)
	if !ok {
		return
	}

	scores, err := h.service.CalculateScores(c.Request.Context(), institutionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, scores, map[string]interface{}{"teachers": len(scores)})
}

// List godoc
// @Summary List scores
// @Description Highest final score first
// @Tags Scores
// @Produce json
// @Param institution_id query string false "Institution ID, defaults to the caller's"
// @Success 200 {object} response.Envelope
// @Router /scores [get]
func (h *ScoreHandler) List(c *gin.Context) {
	institutionID, ok := h.institution(c)
	if !ok {
		return
	}

	scores, err := h.service.ListScores(c.Request.Context(), institutionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, scores)
}

func (h *ScoreHandler) institution(c *gin.Context) (string, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return "", false
	}
	institutionID, err := scopeInstitution(claims, c.Query("institution_id"))
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	if institutionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "institution_id is required"))
		return "", false
	}
	return institutionID, true
}
