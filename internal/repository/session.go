package repository

import (
	"context"
	"errors"
	"time"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/model"
)

var (
	ErrSessionExists   = errors.New("checkout session already exists")
	ErrVersionConflict = errors.New("checkout session version conflict")
)

// UpdateFunc receives a private copy of the stored session and returns the
// session to write back. Returning an error aborts the update.
type UpdateFunc func(current *model.Session) (*model.Session, error)

// SessionStore keeps the latest snapshot of every checkout session.
// Missing sessions are reported with checkout.ErrSessionNotFound.
type SessionStore interface {
	// Create stores a new session at version 1. Ids are never reused.
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	// Put overwrites the stored session and bumps its version.
	Put(ctx context.Context, session *model.Session) error
	// Update runs a read-modify-write cycle guarded by the session version.
	// A concurrent writer makes it fail with ErrVersionConflict.
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.Session, error)
	// FindByOrderID returns the completed session holding orderID.
	FindByOrderID(ctx context.Context, orderID string) (*model.Session, error)
}

func stampCreate(session *model.Session, now time.Time) {
	session.Version = 1
	if session.Status == "" {
		session.Status = model.SessionStatusOpen
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
}

// prepareNext validates the result of an UpdateFunc and stamps it as the
// successor of current.
func prepareNext(current, next *model.Session, now time.Time) (*model.Session, error) {
	if next == nil {
		return nil, errors.New("update returned no session")
	}
	if next.ID != current.ID {
		return nil, errors.New("update changed the session id")
	}
	next.Version = current.Version + 1
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = now
	return next, nil
}

var errNotFound = checkout.ErrSessionNotFound
