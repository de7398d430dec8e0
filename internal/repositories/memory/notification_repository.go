package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository keeps delivery records in a map
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

// NewNotificationRepository creates an empty NotificationRepository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: map[primitive.ObjectID]models.Notification{}}
}

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, models.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) FindByCampaignID(_ context.Context, campaignID int64, page, limit int) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Notification{}
	for _, n := range r.notifications {
		if n.CampaignID == campaignID {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return paginate(out, page, limit), nil
}

func (r *NotificationRepository) Update(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[n.ID]; !ok {
		return models.ErrNotificationNotFound
	}
	n.UpdatedAt = time.Now()
	r.notifications[n.ID] = *n
	return nil
}
