package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/middleware"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationHandler handles reservation reprogramming requests
type ReservationHandler struct {
	reservationService services.ReservationManager
	logger             *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService services.ReservationManager, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		logger:             logger,
	}
}

// GetReservation handles GET /reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservationService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// EvaluateReprogramming handles POST /reservations/:id/reprogramming/evaluate
func (h *ReservationHandler) EvaluateReprogramming(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var request struct {
		ProposedStart time.Time `json:"proposedStart" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := h.reservationService.Evaluate(c.Request.Context(), id, request.ProposedStart)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// Reprogram handles POST /reservations/:id/reprogram. A denial is a normal
// outcome and is answered with 200 and allowed=false.
func (h *ReservationHandler) Reprogram(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var request struct {
		ProposedStart time.Time `json:"proposedStart" binding:"required"`
		Reason        string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, verdict, err := h.reservationService.Reprogram(c.Request.Context(), middleware.Actor(c), id, request.ProposedStart, request.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allowed":     verdict.Allowed,
		"reason":      verdict.Reason,
		"reservation": reservation,
	})
}
