package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ucp-merchant-demo/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the read model of completed orders. The session store
// stays the source of truth; rows here are written after completion commits.
type OrderRepository interface {
	Save(ctx context.Context, order *model.Order, currency string) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindByCheckoutID(ctx context.Context, checkoutID string) (*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Save(ctx context.Context, order *model.Order, currency string) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}

	var total int64
	for _, t := range order.Totals {
		if t.Type == model.TotalTypeTotal {
			total = t.Amount
		}
	}

	row := &model.OrderRow{
		OrderID:    order.ID,
		CheckoutID: order.CheckoutID,
		Total:      total,
		Currency:   currency,
		Payload:    string(payload),
		CreatedAt:  order.CreatedAt,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total", "currency", "payload"}),
	}).Create(row).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return r.find(ctx, "order_id = ?", orderID)
}

func (r *orderRepoImpl) FindByCheckoutID(ctx context.Context, checkoutID string) (*model.Order, error) {
	return r.find(ctx, "checkout_id = ?", checkoutID)
}

func (r *orderRepoImpl) find(ctx context.Context, query string, arg string) (*model.Order, error) {
	var row model.OrderRow
	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find order %s: %w", arg, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	var order model.Order
	if err := json.Unmarshal([]byte(row.Payload), &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", row.OrderID, err)
	}
	return &order, nil
}
