package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type importService interface {
	Analyze(ctx context.Context, fileName string, content []byte, actor string) (*models.ImportBatch, error)
	Get(batchID string) (*models.ImportBatch, error)
	RemoveRow(batchID string, index int) (*models.ImportBatch, error)
	Discard(batchID string) error
	Commit(ctx context.Context, batchID string, mode models.ImportMode, role models.AdminRole, actor string) (*models.ImportResult, error)
}

// ImportHandler drives the stage-review-commit import flow.
type ImportHandler struct {
	service     importService
	maxFileSize int64
}

// NewImportHandler constructs the handler. maxFileSize bounds how much of an upload is read.
func NewImportHandler(svc importService, maxFileSize int64) *ImportHandler {
	return &ImportHandler{service: svc, maxFileSize: maxFileSize}
}

// Analyze godoc
// @Summary Stage an import file
// @Description Parses a CSV or XLSX upload into a staged batch with validation issues. Nothing is written.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/imports [post]
func (h *ImportHandler) Analyze(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "import file exceeds the size limit"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxFileSize > 0 {
		reader = io.LimitReader(file, h.maxFileSize+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}

	batch, err := h.service.Analyze(c.Request.Context(), header.Filename, content, actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Get godoc
// @Summary Get staged batch
// @Tags Imports
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/imports/{id} [get]
func (h *ImportHandler) Get(c *gin.Context) {
	batch, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// RemoveRow godoc
// @Summary Drop a staged row
// @Tags Imports
// @Produce json
// @Param id path string true "Batch ID"
// @Param index path int true "Zero-based row index"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/imports/{id}/rows/{index} [delete]
func (h *ImportHandler) RemoveRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "row index must be an integer"))
		return
	}
	batch, err := h.service.RemoveRow(c.Param("id"), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Commit godoc
// @Summary Commit staged batch
// @Description merge upserts by id and keeps other records; mirror replaces the registry (Super Admin only).
// @Tags Imports
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body models.ImportCommitRequest false "Commit mode, merge by default"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/imports/{id}/commit [post]
func (h *ImportHandler) Commit(c *gin.Context) {
	var req models.ImportCommitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	if req.Mode == "" {
		req.Mode = models.ImportModeMerge
	}

	result, err := h.service.Commit(c.Request.Context(), c.Param("id"), req.Mode, actorRole(c), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Discard godoc
// @Summary Discard staged batch
// @Tags Imports
// @Param id path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/imports/{id} [delete]
func (h *ImportHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
