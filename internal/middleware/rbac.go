package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

// Self is the pseudo-role granting a donor access to routes whose :id is their own record.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Staff are matched by role; donors
// only pass when SELF is allowed and the :id parameter is their own id (or absent).
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.AdminRole]struct{})
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.AdminRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		switch claims.Kind {
		case models.PrincipalAdmin:
			if _, ok := allowedRoles[claims.Role]; ok {
				c.Next()
				return
			}
		case models.PrincipalDonor:
			if allowSelf {
				if targetID := c.Param("id"); targetID == "" || targetID == claims.PrincipalID() {
					c.Next()
					return
				}
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of staff roles.
func RequireRoles(roles ...models.AdminRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// RequireDonor admits donor sessions only.
func RequireDonor() gin.HandlerFunc {
	return RBAC(Self)
}

// Role sets for the staff permission tiers.
var (
	AnyStaff    = []models.AdminRole{models.RoleSuperAdmin, models.RoleEditor, models.RoleViewer}
	Editors     = []models.AdminRole{models.RoleSuperAdmin, models.RoleEditor}
	SuperAdmins = []models.AdminRole{models.RoleSuperAdmin}
)
