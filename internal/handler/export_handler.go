package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/service"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type exportService interface {
	Registry(ctx context.Context, format string, ids []string, actor string) (*service.ExportFile, error)
	Backup(ctx context.Context, actor string) (*service.ExportFile, error)
	Dossier(ctx context.Context, id, format, actor string) (*service.ExportFile, error)
	Template(format string) (*service.ExportFile, error)
}

// ExportHandler streams generated files as downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Registry godoc
// @Summary Export registry
// @Description Download the registry (or the selected ids) as csv, xlsx or pdf. Passwords are never exported.
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf"
// @Param ids query string false "Comma separated donor ids"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/exports/registry [get]
func (h *ExportHandler) Registry(c *gin.Context) {
	file, err := h.service.Registry(c.Request.Context(), strings.ToLower(c.Query("format")), splitIDs(c.Query("ids")), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Backup godoc
// @Summary JSON backup
// @Description Full registry as a pretty-printed JSON array.
// @Tags Exports
// @Produce json
// @Success 200 {file} file
// @Router /admin/exports/backup [get]
func (h *ExportHandler) Backup(c *gin.Context) {
	file, err := h.service.Backup(c.Request.Context(), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Dossier godoc
// @Summary Donor dossier
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Donor ID"
// @Param format query string false "json or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /admin/exports/donors/{id} [get]
func (h *ExportHandler) Dossier(c *gin.Context) {
	file, err := h.service.Dossier(c.Request.Context(), c.Param("id"), strings.ToLower(c.Query("format")), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Template godoc
// @Summary Import template
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Router /admin/exports/template [get]
func (h *ExportHandler) Template(c *gin.Context) {
	file, err := h.service.Template(strings.ToLower(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

func attach(c *gin.Context, file *service.ExportFile) {
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}
