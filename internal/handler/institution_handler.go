package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type institutionService interface {
	CreateInstitution(ctx context.Context, req models.InstitutionRequest) (*models.Institution, error)
	UpdateInstitution(ctx context.Context, id string, req models.InstitutionRequest) (*models.Institution, error)
	SetEvaluationPeriod(ctx context.Context, id string, req models.EvaluationPeriodRequest) (*models.Institution, error)
	ListInstitutions(ctx context.Context) ([]models.Institution, error)
	GetInstitution(ctx context.Context, id string) (*models.Institution, error)
	DeleteInstitution(ctx context.Context, id string) error
}

// InstitutionHandler exposes tenant endpoints.
type InstitutionHandler struct {
	service institutionService
}

// NewInstitutionHandler constructs an institution handler.
func NewInstitutionHandler(svc institutionService) *InstitutionHandler {
	return &InstitutionHandler{service: svc}
}

// List godoc
// @Summary List institutions
// @Description Super admins see every tenant, everyone else only their own
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	items, err := h.service.ListInstitutions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role != models.RoleSuperAdmin {
		visible := items[:0]
		for _, inst := range items {
			if inst.ID == claims.InstitutionID {
				visible = append(visible, inst)
			}
		}
		items = visible
	}

	response.OK(c, items)
}

// Get godoc
// @Summary Get institution
// @Tags Institutions
// @Produce json
// @Param id path string true "Institution ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	inst, err := h.service.GetInstitution(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, inst)
}

// Create godoc
// @Summary Create institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body models.InstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	var req models.InstitutionRequest
	if !bindJSON(c, &req, "invalid institution payload") {
		return
	}

	inst, err := h.service.CreateInstitution(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, inst)
}

// Update godoc
// @Summary Update institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Param payload body models.InstitutionRequest true "Institution payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /institutions/{id} [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	var req models.InstitutionRequest
	if !bindJSON(c, &req, "invalid institution payload") {
		return
	}

	inst, err := h.service.UpdateInstitution(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, inst)
}

// SetEvaluationPeriod godoc
// @Summary Open or close the evaluation window
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Param payload body models.EvaluationPeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /institutions/{id}/evaluation-period [put]
func (h *InstitutionHandler) SetEvaluationPeriod(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var req models.EvaluationPeriodRequest
	if !bindJSON(c, &req, "invalid evaluation period payload") {
		return
	}

	inst, err := h.service.SetEvaluationPeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, inst)
}

// Delete godoc
// @Summary Delete institution
// @Description Removes the tenant record only; members, subjects and questionnaires stay behind
// @Tags Institutions
// @Param id path string true "Institution ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /institutions/{id} [delete]
func (h *InstitutionHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteInstitution(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *InstitutionHandler) authorize(c *gin.Context) bool {
	claims := requireClaims(c)
	if claims == nil {
		return false
	}
	if err := authorizeInstitution(claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
