package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type sessionFlow interface {
	State(ctx context.Context) models.SetupStatus
	Setup(ctx context.Context, req models.SetupRequest) (*models.UserView, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *models.JWTClaims) error
	ChangePassword(ctx context.Context, claims *models.JWTClaims, req models.ChangePasswordRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, claims *models.JWTClaims) (*models.UserView, error)
}

// AuthHandler wires the setup and session endpoints.
type AuthHandler struct {
	service sessionFlow
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc sessionFlow) *AuthHandler {
	return &AuthHandler{service: svc}
}

// SetupStatus godoc
// @Summary Bootstrap state
// @Description Reports TABLE_ERROR, EMPTY or NORMAL together with the active storage mode
// @Tags Setup
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /setup [get]
func (h *AuthHandler) SetupStatus(c *gin.Context) {
	response.OK(c, h.service.State(c.Request.Context()))
}

// Setup godoc
// @Summary Create the first super admin
// @Description Only allowed while no user exists
// @Tags Setup
// @Accept json
// @Produce json
// @Param payload body models.SetupRequest true "Setup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /setup [post]
func (h *AuthHandler) Setup(c *gin.Context) {
	var req models.SetupRequest
	if !bindJSON(c, &req, "invalid setup payload") {
		return
	}

	user, err := h.service.Setup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Ends the session bound to the access token
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ChangePassword godoc
// @Summary Change password
// @Description Replaces the password of the current user and returns a fresh token without the change requirement
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	var req models.ChangePasswordRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}

	res, err := h.service.ChangePassword(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	user, err := h.service.Me(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user)
}
