package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/middleware"
	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type registryService interface {
	Query(ctx context.Context, filter models.DonorFilter) (*models.DonorPage, error)
	SearchPublic(ctx context.Context, filter models.PublicSearchFilter) ([]models.PublicDonor, models.Pagination, error)
	Stats(ctx context.Context) (*models.RegistryStats, bool, error)
	Health(ctx context.Context) (*models.HealthReport, bool, error)
	Reach(ctx context.Context, bloodGroup string) (int, error)
}

// RegistryHandler serves the read side of the registry: listing, search and the derived views.
type RegistryHandler struct {
	service registryService
}

// NewRegistryHandler constructs the handler.
func NewRegistryHandler(svc registryService) *RegistryHandler {
	return &RegistryHandler{service: svc}
}

// List godoc
// @Summary List donors
// @Description Filter, sort and paginate the registry. Unsupported page sizes fall back to the default.
// @Tags Registry
// @Produce json
// @Param search query string false "Substring of name, phone or login id"
// @Param status query string false "All, Active, Blocked, Verified, Unverified, Available, Duplicates, Incomplete"
// @Param bloodGroup query string false "Blood group or All"
// @Param sortBy query string false "name, bloodGroup, createdAt or availability"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/donors [get]
func (h *RegistryHandler) List(c *gin.Context) {
	filter := models.DonorFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Status:     models.ParseStatusFilter(c.Query("status")),
		BloodGroup: strings.TrimSpace(c.Query("bloodGroup")),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 0),
	}

	page, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetMeta(c, "window", page.Window)
	response.JSON(c, http.StatusOK, page.Items, &page.Pagination, middleware.Meta(c))
}

// Search godoc
// @Summary Find donors
// @Description Anonymous search. Blocked donors are never listed.
// @Tags Donors
// @Produce json
// @Param bloodGroup query string false "Blood group or All"
// @Param location query string false "Substring of the address"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /donors [get]
func (h *RegistryHandler) Search(c *gin.Context) {
	filter := models.PublicSearchFilter{
		BloodGroup: strings.TrimSpace(c.Query("bloodGroup")),
		Location:   strings.TrimSpace(c.Query("location")),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 0),
	}

	donors, pagination, err := h.service.SearchPublic(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, donors, &pagination)
}

// Stats godoc
// @Summary Registry statistics
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *RegistryHandler) Stats(c *gin.Context) {
	stats, hit, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.Meta(c))
}

// Health godoc
// @Summary Data health report
// @Description Duplicate phone numbers, incomplete records and the unverified tally.
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/health [get]
func (h *RegistryHandler) Health(c *gin.Context) {
	report, hit, err := h.service.Health(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, report, nil, middleware.Meta(c))
}

// Reach godoc
// @Summary Broadcast reach preview
// @Description Number of available, unblocked donors a broadcast for the group would reach.
// @Tags Alerts
// @Produce json
// @Param bloodGroup query string true "Blood group or All"
// @Success 200 {object} response.Envelope
// @Router /admin/alerts/reach [get]
func (h *RegistryHandler) Reach(c *gin.Context) {
	group := strings.TrimSpace(c.Query("bloodGroup"))
	if group == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "bloodGroup is required"))
		return
	}
	reach, err := h.service.Reach(c.Request.Context(), group)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"bloodGroup": group, "reach": reach}, nil)
}
