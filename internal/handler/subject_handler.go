package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type subjectService interface {
	AssignSubject(ctx context.Context, req models.SubjectRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// SubjectHandler exposes course offering endpoints.
type SubjectHandler struct {
	service subjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects
// @Description Lists the subjects of the caller's institution, optionally for one teacher
// @Tags Subjects
// @Produce json
// @Param institution_id query string false "Institution ID (super admin only)"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	institutionID, err := scopeInstitution(claims, c.Query("institution_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	subjects, err := h.service.ListSubjects(c.Request.Context(), models.SubjectFilter{
		InstitutionID: institutionID,
		TeacherID:     c.Query("teacher_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, subjects)
}

// Get godoc
// @Summary Get subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, subject)
}

// Create godoc
// @Summary Assign subject
// @Description Creates a subject, optionally taught by a teacher of the same institution
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.SubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.SubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	if err := authorizeInstitution(claims, req.InstitutionID); err != nil {
		response.Error(c, err)
		return
	}

	subject, err := h.service.AssignSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, subject)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Param id path string true "Subject ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	subject, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSubject(c.Request.Context(), subject.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *SubjectHandler) load(c *gin.Context) (*models.Subject, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return nil, false
	}

	subject, err := h.service.GetSubject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if err := authorizeInstitution(claims, subject.InstitutionID); err != nil {
		response.Error(c, err)
		return nil, false
	}
	return subject, true
}
