package handlers

import (
	"net/http"

	"homefix/models"
	"homefix/services/dispatch"
	"homefix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProviderResponseHandler exposes the acceptance race and live-location
// endpoints to provider clients.
type ProviderResponseHandler struct {
	Svc    dispatch.Service
	Logger *zap.Logger
}

func NewProviderResponseHandler(svc dispatch.Service, logger *zap.Logger) *ProviderResponseHandler {
	return &ProviderResponseHandler{Svc: svc, Logger: logger}
}

// AcceptBooking claims the booking for the authenticated provider. Losing
// the race is an expected outcome, answered with 409 ALREADY_TAKEN.
func (h *ProviderResponseHandler) AcceptBooking(c *gin.Context) {
	providerID := c.GetString("providerID")
	booking, err := h.Svc.Accept(c.Request.Context(), c.Param("id"), providerID)
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "ASSIGNED", "booking": booking})
}

// DeclineBooking passes on an alert, or backs out of a won booking.
func (h *ProviderResponseHandler) DeclineBooking(c *gin.Context) {
	providerID := c.GetString("providerID")
	if err := h.Svc.Decline(c.Request.Context(), c.Param("id"), providerID); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "DECLINED"})
}

type locationRequest struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// UpdateLocation streams the provider's live position onto the booking.
func (h *ProviderResponseHandler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	loc := models.NewGeoPoint(req.Longitude, req.Latitude)
	if err := h.Svc.UpdateLiveLocation(c.Request.Context(), c.Param("id"), loc); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}
