package services

import (
	"testing"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name     string
		campaign models.Campaign
		want     models.CampaignMetrics
	}{
		{
			name: "no recipients",
			want: models.CampaignMetrics{},
		},
		{
			name:     "all delivered",
			campaign: models.Campaign{TotalRecipients: 5, TotalSent: 5, TotalRead: 2},
			want:     models.CampaignMetrics{SuccessRate: 100, OpenRate: 40, ErrorRate: 0},
		},
		{
			name:     "rounded to one decimal",
			campaign: models.Campaign{TotalRecipients: 3, TotalSent: 2, TotalErrors: 1, TotalRead: 1},
			want:     models.CampaignMetrics{SuccessRate: 66.7, OpenRate: 33.3, ErrorRate: 33.3},
		},
		{
			name:     "open rate uses recipients not sends",
			campaign: models.Campaign{TotalRecipients: 8, TotalSent: 4, TotalErrors: 4, TotalRead: 4},
			want:     models.CampaignMetrics{SuccessRate: 50, OpenRate: 50, ErrorRate: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMetrics(&tt.campaign))
		})
	}
}
