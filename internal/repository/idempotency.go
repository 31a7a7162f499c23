package repository

import (
	"context"
	"errors"
	"time"

	"ucp-merchant-demo/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrIdempotencyKeyReused = errors.New("idempotency key was used for a different checkout")

const (
	OperationCreateCheckout   = "create_checkout"
	OperationCompleteCheckout = "complete_checkout"
)

type IdempotencyRepository interface {
	// Lookup returns the resource id recorded for key, or "" when the key is new.
	Lookup(ctx context.Context, key, operation string) (string, error)
	Remember(ctx context.Context, key, operation, resourceID string) error
}

type idempotencyRepoImpl struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepoImpl{db: db}
}

func (r *idempotencyRepoImpl) Lookup(ctx context.Context, key, operation string) (string, error) {
	var record model.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND operation = ?", key, operation).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.ResourceID, nil
}

// Remember records resourceID for a key, replacing a stale earlier record.
func (r *idempotencyRepoImpl) Remember(ctx context.Context, key, operation, resourceID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}, {Name: "operation"}},
		DoUpdates: clause.AssignmentColumns([]string{"resource_id", "created_at"}),
	}).Create(&model.IdempotencyKey{
		Key:        key,
		Operation:  operation,
		ResourceID: resourceID,
		CreatedAt:  time.Now(),
	}).Error
}
