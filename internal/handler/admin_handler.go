package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	Get(ctx context.Context, id string) (*models.AdminUser, error)
	Create(ctx context.Context, req models.CreateAdminRequest, actor string) (*models.AdminUser, error)
	Delete(ctx context.Context, id, callerID, actor string) error
}

// AdminHandler handles staff account endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// List godoc
// @Summary List staff accounts
// @Tags Admin Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Get godoc
// @Summary Get staff account
// @Tags Admin Users
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// Create godoc
// @Summary Create staff account
// @Tags Admin Users
// @Accept json
// @Produce json
// @Param payload body models.CreateAdminRequest true "Create admin payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	admin, err := h.service.Create(c.Request.Context(), req, actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// Delete godoc
// @Summary Revoke staff account
// @Description An admin cannot revoke their own account.
// @Tags Admin Users
// @Param id path string true "Admin ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.PrincipalID(), claims.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
