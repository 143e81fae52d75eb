// Package memory holds process-local repositories for the simulator and for
// deployments without a database.
package memory

import (
	"context"
	"sync"

	"github.com/seu-repo/songorder/internal/domain"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

// FindByID returns nil, nil when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *OrderRepository) FindByConversationID(ctx context.Context, conversationID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Order
	for _, o := range r.orders {
		if o.ConversationID != conversationID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			o := o
			latest = &o
		}
	}
	return latest, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.Save(ctx, order)
}
