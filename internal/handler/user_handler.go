package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type userService interface {
	AddStudent(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	AddTeacher(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	AddClassHead(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	AddManager(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	PromoteToClassHead(ctx context.Context, id string, req models.PromoteRequest) (*models.User, error)
	ApproveUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type addMemberFunc func(ctx context.Context, req models.CreateUserRequest) (*models.User, error)

// UserHandler handles institution member endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// CreateStudent godoc
// @Summary Add student
// @Description Adds a student with the default password; the first login must change it
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/students [post]
func (h *UserHandler) CreateStudent(c *gin.Context) {
	h.create(c, h.service.AddStudent)
}

// CreateTeacher godoc
// @Summary Add teacher
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/teachers [post]
func (h *UserHandler) CreateTeacher(c *gin.Context) {
	h.create(c, h.service.AddTeacher)
}

// CreateClassHead godoc
// @Summary Add class head
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/class-heads [post]
func (h *UserHandler) CreateClassHead(c *gin.Context) {
	h.create(c, h.service.AddClassHead)
}

// CreateManager godoc
// @Summary Add institution manager
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/managers [post]
func (h *UserHandler) CreateManager(c *gin.Context) {
	h.create(c, h.service.AddManager)
}

func (h *UserHandler) create(c *gin.Context, add addMemberFunc) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.CreateUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	if err := authorizeInstitution(claims, req.InstitutionID); err != nil {
		response.Error(c, err)
		return
	}

	user, err := add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user.View())
}

// List godoc
// @Summary List users
// @Description Managers only see their own institution
// @Tags Users
// @Produce json
// @Param institution_id query string false "Institution filter"
// @Param role query string false "Role filter"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	institutionID, err := scopeInstitution(claims, c.Query("institution_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), models.UserFilter{
		InstitutionID: institutionID,
		Role:          models.UserRole(c.Query("role")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	response.OK(c, views)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, user.View())
}

// Promote godoc
// @Summary Promote student to class head
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.PromoteRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/{id}/promote [post]
func (h *UserHandler) Promote(c *gin.Context) {
	var req models.PromoteRequest
	if !bindJSON(c, &req, "invalid promotion payload") {
		return
	}
	target, ok := h.load(c)
	if !ok {
		return
	}

	user, err := h.service.PromoteToClassHead(c.Request.Context(), target.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user.View())
}

// Approve godoc
// @Summary Approve user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/approve [post]
func (h *UserHandler) Approve(c *gin.Context) {
	target, ok := h.load(c)
	if !ok {
		return
	}

	user, err := h.service.ApproveUser(c.Request.Context(), target.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user.View())
}

// Delete godoc
// @Summary Delete user
// @Description Hard delete; subjects taught by the user keep the dangling reference
// @Tags Users
// @Param id path string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	target, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), target.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// load fetches the :id user and checks the caller may act on it.
func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return nil, false
	}

	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if user.ID == claims.UserID {
		return user, true
	}

	institutionID := ""
	if user.InstitutionID != nil {
		institutionID = *user.InstitutionID
	}
	if err := authorizeInstitution(claims, institutionID); err != nil {
		response.Error(c, err)
		return nil, false
	}
	return user, true
}
