package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService services.NotificationManager
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService services.NotificationManager, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// RefreshStatus handles POST /notifications/:id/refresh-status
func (h *NotificationHandler) RefreshStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	notification, err := h.notificationService.RefreshStatus(c.Request.Context(), id)
	if errors.Is(err, services.ErrStatusNotYetAvailable) {
		c.JSON(http.StatusAccepted, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}
