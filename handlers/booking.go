package handlers

import (
	"errors"
	"net/http"

	"homefix/models"
	"homefix/services/dispatch"
	"homefix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the dispatch engine to customer clients.
type BookingHandler struct {
	Svc    dispatch.Service
	Logger *zap.Logger
}

func NewBookingHandler(svc dispatch.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// dispatchError maps engine sentinels to HTTP responses.
func dispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatch.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", "")
	case errors.Is(err, dispatch.ErrAlreadyTaken):
		c.JSON(http.StatusConflict, gin.H{"result": "ALREADY_TAKEN"})
	case errors.Is(err, dispatch.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid status transition", "")
	case errors.Is(err, dispatch.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"result": "NOT_CANCELLABLE"})
	case errors.Is(err, dispatch.ErrCodeMismatch):
		utils.JSONError(c, http.StatusUnprocessableEntity, "verification code mismatch", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

type createBookingRequest struct {
	ServiceType string  `json:"serviceType" binding:"required"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	BasePrice   float64 `json:"basePrice" binding:"required"`
	Discount    float64 `json:"discount"`
	Tax         float64 `json:"tax"`
	VisitingFee float64 `json:"visitingFee"`
}

// CreateBooking creates a REQUESTED booking and starts its dispatch run.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	userID := c.GetString("userID")
	booking, err := h.Svc.CreateBooking(c.Request.Context(), dispatch.CreateBookingInput{
		UserID:      userID,
		ServiceType: req.ServiceType,
		Destination: models.NewGeoPoint(req.Longitude, req.Latitude),
		BasePrice:   req.BasePrice,
		Discount:    req.Discount,
		Tax:         req.Tax,
		VisitingFee: req.VisitingFee,
	})
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetBooking returns the current booking record.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type advanceRequest struct {
	Target string `json:"target" binding:"required"`
	Code   string `json:"code"`
}

// AdvanceBooking applies a lifecycle transition.
func (h *BookingHandler) AdvanceBooking(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	target := models.BookingStatus(req.Target)
	if !target.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "unknown target status", req.Target)
		return
	}

	actor := c.GetString("providerID")
	if actor == "" {
		actor = c.GetString("userID")
	}
	result, err := h.Svc.Advance(c.Request.Context(), c.Param("id"), target, actor, req.Code)
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelBooking cancels the booking, returning the stage-based fee.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	actor := models.ActorCustomer
	if c.GetString("providerID") != "" {
		actor = models.ActorProvider
	}
	fee, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "CANCELLED", "cancellationFee": fee})
}
