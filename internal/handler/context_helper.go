package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/middleware"
	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// actorName is the username recorded against audit entries.
func actorName(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Username
	}
	return ""
}

func actorRole(c *gin.Context) models.AdminRole {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Role
	}
	return ""
}

// expectedVersion reads the optimistic concurrency token from If-Match (quoted or bare) and
// falls back to the ?version query parameter. Zero means unconditional.
func expectedVersion(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		raw = strings.TrimSpace(c.Query("version"))
	}
	if raw == "" || raw == "*" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "If-Match must carry a record version")
	}
	return v, nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
