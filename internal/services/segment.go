package services

import (
	"github.com/ArowuTest/tourbook-backend/internal/models"
)

// EvaluateSegment returns the users that satisfy every filter, in population order
func EvaluateSegment(population []*models.User, filters []models.SegmentFilter) []*models.User {
	out := make([]*models.User, 0, len(population))
	for _, u := range population {
		if matchesAll(u, filters) {
			out = append(out, u)
		}
	}
	return out
}

func matchesAll(u *models.User, filters []models.SegmentFilter) bool {
	for _, f := range filters {
		if !f.Matches(u) {
			return false
		}
	}
	return true
}
