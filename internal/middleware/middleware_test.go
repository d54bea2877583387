package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(_ context.Context, token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type recordingObserver struct {
	requests []recordedRequest
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.requests = append(r.requests, recordedRequest{method: method, path: path, status: status})
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "usr_1", Role: models.RoleTeacher}}

	router := gin.New()
	router.GET("/me", JWT(validator), func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})

	w := serve(router, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/me", "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "usr_1", w.Body.String())
	assert.Equal(t, "abc", validator.token)

	validator.err = appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")
	w = serve(router, http.MethodGet, "/me", "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, w))
}

func TestPasswordGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "usr_1", Role: models.RoleStudent, MustChangePassword: true}}

	router := gin.New()
	router.GET("/subjects", JWT(validator), PasswordGate(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/auth/me", JWT(validator), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(router, http.MethodGet, "/subjects", "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, appErrors.ErrPasswordChange.Code, errorCode(t, w))

	w = serve(router, http.MethodGet, "/auth/me", "Bearer t")
	assert.Equal(t, http.StatusNoContent, w.Code)

	validator.claims.MustChangePassword = false
	w = serve(router, http.MethodGet, "/subjects", "Bearer t")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRBAC(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "usr_7", Role: models.RoleTeacher}}

	router := gin.New()
	router.Use(JWT(validator))
	router.GET("/admin", RequireRoles(Administrators...), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/users/:id", RBAC(string(models.RoleSuperAdmin), AllowSelf), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/admin", "Bearer t").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/users/usr_7", "Bearer t").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/users/usr_8", "Bearer t").Code)

	validator.claims.Role = models.RoleInstitutionManager
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/admin", "Bearer t").Code)
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(models.RoleSuperAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}

	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	serve(router, http.MethodGet, "/users/usr_42", "")
	serve(router, http.MethodGet, "/nowhere", "")

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/users/:id", status: http.StatusAccepted}, observer.requests[0])
	assert.Equal(t, "unmatched", observer.requests[1].path)
	assert.Equal(t, http.StatusNotFound, observer.requests[1].status)
}
