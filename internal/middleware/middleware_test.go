package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/service"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var tokens = stubValidator{
	"super":  {Kind: models.PrincipalAdmin, Role: models.RoleSuperAdmin, Username: "root"},
	"viewer": {Kind: models.PrincipalAdmin, Role: models.RoleViewer, Username: "eve"},
	"donor":  donorClaims("d1"),
}

func donorClaims(id string) *models.JWTClaims {
	c := &models.JWTClaims{Kind: models.PrincipalDonor, Username: "BDC-ID-1001"}
	c.Subject = id
	return c
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", JWT(tokens), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "forged").Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Basic abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/p", "super").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen *models.JWTClaims
	r.GET("/p", OptionalJWT(tokens), func(c *gin.Context) {
		seen = Claims(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/p", "forged").Code)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/p", "viewer").Code)
	assert.Equal(t, "eve", seen.Username)
}

func TestRBACStaffTiers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(tokens))
	r.GET("/read", RequireRoles(AnyStaff...), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/write", RequireRoles(Editors...), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/read", "viewer").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/write", "viewer").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/write", "super").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/read", "donor").Code)
}

func TestRBACSelfMatchesOwnRecordOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(tokens))
	r.GET("/donors/:id", RBAC(string(models.RoleEditor), Self), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/me", RequireDonor(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/donors/d1", "donor").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/donors/d2", "donor").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/me", "donor").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/me", "super").Code)
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "req-1")
		c.Next()
	})
	r.Use(ResponseMeta())
	var meta map[string]interface{}
	r.GET("/p", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "window", []string{"1"})
		meta = Meta(c)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/p", "")
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, "req-1", meta["request_id"])
	assert.Contains(t, meta, "window")
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsObservesRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/p", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/p", "")
	serve(r, http.MethodGet, "/missing", "")
	serve(r, http.MethodGet, "/metrics", "")
	snap := metrics.Snapshot()
	assert.EqualValues(t, 2, snap.RequestsTotal, "scrapes are not observed")
}
