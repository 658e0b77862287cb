package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/response"
)

type alertService interface {
	List(ctx context.Context) ([]models.EmergencyAlert, error)
	Active(ctx context.Context) ([]models.EmergencyAlert, error)
	Templates() []models.AlertTemplate
	Broadcast(ctx context.Context, req models.BroadcastRequest, actor string) (*models.BroadcastResult, error)
	SOS(ctx context.Context, req models.BroadcastRequest, donorName string) (*models.EmergencyAlert, error)
	Terminate(ctx context.Context, id, actor string) error
}

type donorLookup interface {
	Get(ctx context.Context, id string) (*models.Donor, error)
}

// AlertHandler exposes emergency broadcasts.
type AlertHandler struct {
	service alertService
	donors  donorLookup
}

// NewAlertHandler constructs the handler. donors resolves the sender of an SOS.
func NewAlertHandler(svc alertService, donors donorLookup) *AlertHandler {
	return &AlertHandler{service: svc, donors: donors}
}

// Active godoc
// @Summary Active alerts
// @Description Public feed of live emergency requests, newest first.
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) Active(c *gin.Context) {
	alerts, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// List godoc
// @Summary All alerts
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// Templates godoc
// @Summary Broadcast templates
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/alerts/templates [get]
func (h *AlertHandler) Templates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Templates(), nil)
}

// Broadcast godoc
// @Summary Dispatch alert
// @Description Publishes an emergency request. A templateId pre-fills severity and message.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body models.BroadcastRequest true "Alert"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/alerts [post]
func (h *AlertHandler) Broadcast(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid broadcast payload"))
		return
	}

	result, err := h.service.Broadcast(c.Request.Context(), req, actorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SOS godoc
// @Summary Donor SOS
// @Description Lets a signed-in donor raise a request. Severity defaults to Critical.
// @Tags Self Service
// @Accept json
// @Produce json
// @Param payload body models.BroadcastRequest true "Request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/sos [post]
func (h *AlertHandler) SOS(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Kind != models.PrincipalDonor {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sos payload"))
		return
	}

	sender := claims.Username
	if h.donors != nil {
		donor, err := h.donors.Get(c.Request.Context(), claims.PrincipalID())
		if err != nil {
			response.Error(c, err)
			return
		}
		sender = donor.Name
	}

	alert, err := h.service.SOS(c.Request.Context(), req, sender)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alert)
}

// Terminate godoc
// @Summary Terminate alert
// @Tags Alerts
// @Param id path string true "Alert ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/alerts/{id} [delete]
func (h *AlertHandler) Terminate(c *gin.Context) {
	if err := h.service.Terminate(c.Request.Context(), c.Param("id"), actorName(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
