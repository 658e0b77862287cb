package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(svc auditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary Audit trail
// @Description Most recent entries first. The trail only retains the latest entries.
// @Tags Audit
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
