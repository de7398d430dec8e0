package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/tourbook-backend/internal/middleware"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService     services.CampaignManager
	notificationService services.NotificationManager
	logger              *zap.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService services.CampaignManager, notificationService services.NotificationManager, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService:     campaignService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var input models.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), middleware.Actor(c), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// GetCampaigns handles GET /campaigns
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, limit := pagination(c)
	status := models.CampaignStatus(c.Query("status"))

	campaigns, err := h.campaignService.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaigns, "page": page, "limit": limit})
}

// GetCampaign handles GET /campaigns/:id
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// UpdateCampaign handles PUT /campaigns/:id
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input models.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignService.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /campaigns/:id
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.campaignService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

// ScheduleCampaign handles POST /campaigns/:id/schedule
func (h *CampaignHandler) ScheduleCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignService.Schedule(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// ActivateCampaign handles POST /campaigns/:id/activate?force=true
func (h *CampaignHandler) ActivateCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	force, err := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "force must be a boolean"})
		return
	}

	result, err := h.campaignService.Activate(c.Request.Context(), id, force)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign":   result.Campaign,
		"recipients": result.Recipients,
		"dropped":    result.Dropped,
		"metrics":    services.ComputeMetrics(result.Campaign),
	})
}

// CancelCampaign handles POST /campaigns/:id/cancel
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// GetAudience handles GET /campaigns/:id/audience
func (h *CampaignHandler) GetAudience(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resolution, err := h.campaignService.PreviewAudience(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(resolution.Recipients),
		"dropped":    resolution.Dropped,
		"recipients": resolution.Recipients,
	})
}

// GetMetrics handles GET /campaigns/:id/metrics
func (h *CampaignHandler) GetMetrics(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaignId":      campaign.ID,
		"status":          campaign.Status,
		"totalRecipients": campaign.TotalRecipients,
		"totalSent":       campaign.TotalSent,
		"totalRead":       campaign.TotalRead,
		"totalErrors":     campaign.TotalErrors,
		"metrics":         services.ComputeMetrics(campaign),
	})
}

// GetNotifications handles GET /campaigns/:id/notifications
func (h *CampaignHandler) GetNotifications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, limit := pagination(c)
	notifications, err := h.notificationService.ListByCampaign(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications, "page": page, "limit": limit})
}

// RecordDelivery handles POST /campaigns/:id/deliveries
func (h *CampaignHandler) RecordDelivery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var request struct {
		Outcome models.DeliveryOutcome `json:"outcome" binding:"required,oneof=success failure"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// outcomes that cannot be applied are logged by the service, never reported back
	h.campaignService.RecordDelivery(c.Request.Context(), id, request.Outcome)
	c.JSON(http.StatusAccepted, gin.H{"message": "Delivery recorded"})
}

// RecordRead handles POST /campaigns/:id/reads
func (h *CampaignHandler) RecordRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.campaignService.RecordRead(c.Request.Context(), id)
	c.JSON(http.StatusAccepted, gin.H{"message": "Read recorded"})
}
