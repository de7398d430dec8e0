package handlers

import (
	"net/http"

	"github.com/ArowuTest/tourbook-backend/internal/middleware"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SystemSettingsHandler handles system settings-related HTTP requests
type SystemSettingsHandler struct {
	settingsService services.SystemSettingsService
	logger          *zap.Logger
}

// NewSystemSettingsHandler creates a new SystemSettingsHandler
func NewSystemSettingsHandler(settingsService services.SystemSettingsService, logger *zap.Logger) *SystemSettingsHandler {
	return &SystemSettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetSettings handles GET /settings
func (h *SystemSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateReprogrammingRules handles PUT /settings/reprogramming-rules
func (h *SystemSettingsHandler) UpdateReprogrammingRules(c *gin.Context) {
	var request struct {
		Rules []models.RuleConfig `json:"rules"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.UpdateReprogrammingRules(c.Request.Context(), request.Rules, middleware.Actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdatePushGateway handles PUT /settings/push-gateway
func (h *SystemSettingsHandler) UpdatePushGateway(c *gin.Context) {
	var request struct {
		Gateway string `json:"gateway" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.UpdatePushGateway(c.Request.Context(), request.Gateway, middleware.Actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
