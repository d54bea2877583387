package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/middleware"
	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// requireClaims renders 401 and returns nil when the route was reached without JWT.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, message))
		return false
	}
	return true
}

// authorizeInstitution lets super admins reach every tenant and everyone else only their own.
func authorizeInstitution(claims *models.JWTClaims, institutionID string) error {
	if claims.Role == models.RoleSuperAdmin {
		return nil
	}
	if institutionID == "" || claims.InstitutionID != institutionID {
		return appErrors.Clone(appErrors.ErrForbidden, "resource belongs to another institution")
	}
	return nil
}

// scopeInstitution resolves the institution a listing runs against. Non super
// admins default to their own tenant and may not ask for another.
func scopeInstitution(claims *models.JWTClaims, requested string) (string, error) {
	if claims.Role == models.RoleSuperAdmin {
		return requested, nil
	}
	if requested == "" {
		return claims.InstitutionID, nil
	}
	if err := authorizeInstitution(claims, requested); err != nil {
		return "", err
	}
	return requested, nil
}

func isAdministrator(claims *models.JWTClaims) bool {
	return claims.Role == models.RoleSuperAdmin || claims.Role == models.RoleInstitutionManager
}
