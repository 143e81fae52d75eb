package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
)

type OrderRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewOrderRepository(db *gorm.DB, log *zap.Logger) *OrderRepository {
	return &OrderRepository{
		db:  db,
		log: log,
	}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	defer observe(time.Now())
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID returns nil, nil when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	defer observe(time.Now())
	var order domain.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindByConversationID(ctx context.Context, conversationID string) (*domain.Order, error) {
	defer observe(time.Now())
	var order domain.Order
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	defer observe(time.Now())
	return r.db.WithContext(ctx).Save(order).Error
}

func observe(start time.Time) {
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
}
