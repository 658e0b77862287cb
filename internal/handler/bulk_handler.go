package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type bulkService interface {
	Apply(ctx context.Context, req models.BulkActionRequest, actor string) (*models.BulkActionResult, error)
	Global(ctx context.Context, req models.GlobalCommandRequest, role models.AdminRole, actor string) (int, error)
}

// BulkHandler runs selection-wide and registry-wide actions.
type BulkHandler struct {
	service bulkService
}

// NewBulkHandler constructs the handler.
func NewBulkHandler(svc bulkService) *BulkHandler {
	return &BulkHandler{service: svc}
}

// Apply godoc
// @Summary Bulk action
// @Description VERIFY, BLOCK, UNBLOCK, DELETE or EXPORT the selected donors.
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body models.BulkActionRequest true "Action and selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/donors/bulk [post]
func (h *BulkHandler) Apply(c *gin.Context) {
	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	result, err := h.service.Apply(c.Request.Context(), req, actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Global godoc
// @Summary Global command
// @Description VERIFY_ALL or RESET_AVAILABILITY across the registry. Super Admin only.
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body models.GlobalCommandRequest true "Command"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/donors/global [post]
func (h *BulkHandler) Global(c *gin.Context) {
	var req models.GlobalCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid command payload"))
		return
	}

	affected, err := h.service.Global(c.Request.Context(), req, actorRole(c), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"command": req.Command, "affected": affected}, nil)
}
