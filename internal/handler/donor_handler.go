package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type donorService interface {
	Register(ctx context.Context, req models.RegisterDonorRequest) (*models.RegisterDonorResponse, error)
	Get(ctx context.Context, id string) (*models.Donor, error)
	Update(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64, actor string) (*models.Donor, error)
	UpdateSelf(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64) (*models.Donor, error)
	ToggleVerify(ctx context.Context, id, actor string) (*models.Donor, error)
	ToggleBlock(ctx context.Context, id, actor string) (*models.Donor, error)
	ToggleAvailability(ctx context.Context, id string) (*models.Donor, error)
	Recovery(ctx context.Context, id string) (*models.DonationRecovery, error)
	Delete(ctx context.Context, id, actor string) error
	ChangePassword(ctx context.Context, id string, req models.ChangePasswordRequest) error
}

// donorUpdateRequest lets clients send the expected version in the body instead of If-Match.
type donorUpdateRequest struct {
	models.DonorPatch
	Version int64 `json:"version"`
}

// DonorHandler exposes donor lifecycle endpoints for staff and for donors themselves.
type DonorHandler struct {
	service donorService
}

// NewDonorHandler constructs the handler.
func NewDonorHandler(svc donorService) *DonorHandler {
	return &DonorHandler{service: svc}
}

// Register godoc
// @Summary Register as a donor
// @Description Public registration. The generated login id and password are returned once.
// @Tags Donors
// @Accept json
// @Produce json
// @Param payload body models.RegisterDonorRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donors [post]
func (h *DonorHandler) Register(c *gin.Context) {
	var req models.RegisterDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Get godoc
// @Summary Get donor
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/donors/{id} [get]
func (h *DonorHandler) Get(c *gin.Context) {
	donor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, donor, donor.Version)
}

// Update godoc
// @Summary Edit donor
// @Description Partial update. Send If-Match (or body version) to reject stale writes.
// @Tags Donors
// @Accept json
// @Produce json
// @Param id path string true "Donor ID"
// @Param If-Match header string false "Expected record version"
// @Param payload body models.DonorPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/donors/{id} [patch]
func (h *DonorHandler) Update(c *gin.Context) {
	req, version, ok := bindDonorUpdate(c)
	if !ok {
		return
	}

	donor, err := h.service.Update(c.Request.Context(), c.Param("id"), req.DonorPatch, version, actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, donor, donor.Version)
}

// ToggleVerify godoc
// @Summary Toggle verification
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/donors/{id}/verify [post]
func (h *DonorHandler) ToggleVerify(c *gin.Context) {
	donor, err := h.service.ToggleVerify(c.Request.Context(), c.Param("id"), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donor, nil)
}

// ToggleBlock godoc
// @Summary Toggle blocked flag
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/donors/{id}/block [post]
func (h *DonorHandler) ToggleBlock(c *gin.Context) {
	donor, err := h.service.ToggleBlock(c.Request.Context(), c.Param("id"), actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donor, nil)
}

// Delete godoc
// @Summary Delete donor
// @Tags Donors
// @Param id path string true "Donor ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/donors/{id} [delete]
func (h *DonorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorName(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Recovery godoc
// @Summary Donation recovery status
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/donors/{id}/recovery [get]
func (h *DonorHandler) Recovery(c *gin.Context) {
	id, ok := targetDonorID(c)
	if !ok {
		return
	}
	info, err := h.service.Recovery(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Me godoc
// @Summary Own donor profile
// @Tags Self Service
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *DonorHandler) Me(c *gin.Context) {
	id, ok := targetDonorID(c)
	if !ok {
		return
	}
	donor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, donor, donor.Version)
}

// UpdateMe godoc
// @Summary Edit own profile
// @Description Staff-only fields in the payload are ignored.
// @Tags Self Service
// @Accept json
// @Produce json
// @Param If-Match header string false "Expected record version"
// @Param payload body models.DonorPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me [patch]
func (h *DonorHandler) UpdateMe(c *gin.Context) {
	id, ok := targetDonorID(c)
	if !ok {
		return
	}
	req, version, ok := bindDonorUpdate(c)
	if !ok {
		return
	}

	donor, err := h.service.UpdateSelf(c.Request.Context(), id, req.DonorPatch, version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, donor, donor.Version)
}

// ToggleAvailability godoc
// @Summary Toggle own availability
// @Description Refused while the donor is inside the post-donation recovery window.
// @Tags Self Service
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/availability [post]
func (h *DonorHandler) ToggleAvailability(c *gin.Context) {
	id, ok := targetDonorID(c)
	if !ok {
		return
	}
	donor, err := h.service.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donor, nil)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Self Service
// @Accept json
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /me/password [post]
func (h *DonorHandler) ChangePassword(c *gin.Context) {
	id, ok := targetDonorID(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// targetDonorID resolves :id, or the caller's own id on /me routes.
func targetDonorID(c *gin.Context) (string, bool) {
	if id := c.Param("id"); id != "" {
		return id, true
	}
	claims := claimsFromContext(c)
	if claims == nil || claims.Kind != models.PrincipalDonor {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.PrincipalID(), true
}

func bindDonorUpdate(c *gin.Context) (donorUpdateRequest, int64, bool) {
	var req donorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return req, 0, false
	}
	version, err := expectedVersion(c)
	if err != nil {
		response.Error(c, err)
		return req, 0, false
	}
	if version == 0 {
		version = req.Version
	}
	return req, version, true
}
