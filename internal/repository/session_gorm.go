package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ucp-merchant-demo/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepoImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionRepository stores sessions in the checkout_sessions table.
func NewSessionRepository(db *gorm.DB) SessionStore {
	return &sessionRepoImpl{
		db:  db,
		now: time.Now,
	}
}

func (r *sessionRepoImpl) Create(ctx context.Context, session *model.Session) error {
	stampCreate(session, r.now().UTC())
	row, err := toSessionRow(session)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return fmt.Errorf("create session %s: %w", session.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("create session %s: %w", session.ID, ErrSessionExists)
	}
	return nil
}

func (r *sessionRepoImpl) Get(ctx context.Context, id string) (*model.Session, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *sessionRepoImpl) get(tx *gorm.DB, id string) (*model.Session, error) {
	var row model.CheckoutSessionRow
	err := tx.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get session %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return fromSessionRow(&row)
}

func (r *sessionRepoImpl) Put(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now().UTC()
		current, err := r.get(tx, session.ID)
		switch {
		case errors.Is(err, errNotFound):
			stampCreate(session, now)
		case err != nil:
			return err
		default:
			session.Version = current.Version + 1
			session.CreatedAt = current.CreatedAt
			session.UpdatedAt = now
		}

		row, err := toSessionRow(session)
		if err != nil {
			return err
		}
		return tx.Save(row).Error
	})
}

// Update reads outside any transaction; the version predicate on the write
// rejects the result when another writer committed in between.
func (r *sessionRepoImpl) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Session, error) {
	db := r.db.WithContext(ctx)
	current, err := r.get(db, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	next, err = prepareNext(current, next, r.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}

	row, err := toSessionRow(next)
	if err != nil {
		return nil, err
	}

	result := db.Model(&model.CheckoutSessionRow{}).
		Where("id = ? AND version = ?", id, current.Version).
		Updates(map[string]interface{}{
			"status":     row.Status,
			"version":    row.Version,
			"payload":    row.Payload,
			"order_id":   row.OrderID,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update session %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update session %s: %w", id, ErrVersionConflict)
	}
	return next, nil
}

func (r *sessionRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Session, error) {
	var row model.CheckoutSessionRow
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find session by order %s: %w", orderID, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session by order %s: %w", orderID, err)
	}
	return fromSessionRow(&row)
}

func toSessionRow(session *model.Session) (*model.CheckoutSessionRow, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	row := &model.CheckoutSessionRow{
		ID:        session.ID,
		Status:    session.Status.String(),
		Version:   session.Version,
		Payload:   string(payload),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if session.Order != nil {
		row.OrderID = session.Order.ID
	}
	return row, nil
}

func fromSessionRow(row *model.CheckoutSessionRow) (*model.Session, error) {
	var session model.Session
	if err := json.Unmarshal([]byte(row.Payload), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", row.ID, err)
	}
	session.Version = row.Version
	session.Status = model.SessionStatus(row.Status)
	return &session, nil
}
