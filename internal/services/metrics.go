package services

import (
	"math"

	"github.com/ArowuTest/tourbook-backend/internal/models"
)

// ComputeMetrics derives delivery percentages from a campaign snapshot.
// Open rate is measured against total recipients, not against sends.
func ComputeMetrics(c *models.Campaign) models.CampaignMetrics {
	return models.CampaignMetrics{
		SuccessRate: percentage(c.TotalSent, c.TotalRecipients),
		OpenRate:    percentage(c.TotalRead, c.TotalRecipients),
		ErrorRate:   percentage(c.TotalErrors, c.TotalRecipients),
	}
}

// percentage is n/total*100 rounded to one decimal, 0 when total is 0
func percentage(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
