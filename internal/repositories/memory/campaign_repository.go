// Package memory holds process-local implementations of the repository
// interfaces. They back the service when Store.Driver is "memory" and are
// the fixtures of the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
)

var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository keeps campaigns in a map
type CampaignRepository struct {
	mu        sync.RWMutex
	nextID    int64
	campaigns map[int64]*models.Campaign
}

// NewCampaignRepository creates an empty CampaignRepository
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: map[int64]*models.Campaign{}}
}

func (r *CampaignRepository) Create(_ context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	campaign.ID = r.nextID
	r.campaigns[campaign.ID] = campaign.Clone()
	return nil
}

func (r *CampaignRepository) FindByID(_ context.Context, id int64) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, models.ErrCampaignNotFound
	}
	return c.Clone(), nil
}

func (r *CampaignRepository) FindAll(_ context.Context, status models.CampaignStatus, page, limit int) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if status == "" || c.Status == status {
			all = append(all, c.Clone())
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page, limit), nil
}

func (r *CampaignRepository) FindDue(_ context.Context, now time.Time) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	due := []*models.Campaign{}
	for _, c := range r.campaigns {
		if c.Status == models.CampaignStatusScheduled && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			due = append(due, c.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	return due, nil
}

func (r *CampaignRepository) Update(_ context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[campaign.ID]; !ok {
		return models.ErrCampaignNotFound
	}
	r.campaigns[campaign.ID] = campaign.Clone()
	return nil
}

func (r *CampaignRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return models.ErrCampaignNotFound
	}
	delete(r.campaigns, id)
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
