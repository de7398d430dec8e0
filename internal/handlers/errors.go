package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError translates service errors into HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr *models.ValidationError
		stateErr      *models.InvalidStateError
		emptyErr      *models.EmptyAudienceError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validationErr.Fields})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "action not available in this state",
			"action": stateErr.Action,
			"status": stateErr.Status,
			"detail": stateErr.Detail,
		})
	case errors.As(err, &emptyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "campaign audience is empty; adjust the targeting or the population before activating",
			"dropped": emptyErr.Dropped,
		})
	case errors.Is(err, models.ErrCampaignNotFound),
		errors.Is(err, models.ErrReservationNotFound),
		errors.Is(err, models.ErrNotificationNotFound),
		errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

// pagination reads page and limit query parameters
func pagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
