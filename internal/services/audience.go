package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.uber.org/zap"
)

// Resolution is the audience of a campaign at the time it was resolved
type Resolution struct {
	Recipients []models.Recipient `json:"recipients"`
	// Dropped counts explicit user ids that are no longer in the population
	Dropped int `json:"dropped"`
}

// AudienceResolver computes the recipients of a campaign from the current population
type AudienceResolver struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewAudienceResolver creates a new AudienceResolver
func NewAudienceResolver(users repositories.UserRepository, logger *zap.Logger) *AudienceResolver {
	return &AudienceResolver{
		users:  users,
		logger: logger,
	}
}

// Resolve returns the campaign's recipients. Users without a push device are
// included; skipping them is the dispatcher's job.
func (r *AudienceResolver) Resolve(ctx context.Context, c *models.Campaign) (*Resolution, error) {
	population, err := r.users.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}

	res := &Resolution{}
	switch c.Audience {
	case models.AudienceAll:
		res.Recipients = toRecipients(population)

	case models.AudienceExplicit:
		byID := make(map[int64]*models.User, len(population))
		for _, u := range population {
			byID[u.ID] = u
		}
		res.Recipients = make([]models.Recipient, 0, len(c.UserIDs))
		for _, id := range c.UserIDs {
			u, ok := byID[id]
			if !ok {
				res.Dropped++
				continue
			}
			res.Recipients = append(res.Recipients, u.ToRecipient())
		}
		if res.Dropped > 0 {
			metrics.AudienceDroppedIDs.Add(float64(res.Dropped))
			r.logger.Info("explicit audience references unknown users",
				zap.Int64("campaign_id", c.ID),
				zap.Int("dropped", res.Dropped),
				zap.Int("configured", len(c.UserIDs)),
			)
		}

	case models.AudienceSegment:
		filters, problems := models.ParseSegment(c.Segment)
		if len(problems) > 0 {
			return nil, &models.ValidationError{Fields: problems}
		}
		res.Recipients = toRecipients(EvaluateSegment(population, filters))

	default:
		return nil, &models.ValidationError{Fields: map[string]string{
			"audience": fmt.Sprintf("unknown audience mode %q", c.Audience),
		}}
	}
	return res, nil
}

func toRecipients(users []*models.User) []models.Recipient {
	out := make([]models.Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToRecipient())
	}
	return out
}
