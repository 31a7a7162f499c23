package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ucp-merchant-demo/internal/model"
)

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	now      func() time.Time
}

// NewMemorySessionStore returns a process-local store. Sessions are copied on
// the way in and out, so callers never share memory with stored state.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

func (s *memorySessionStore) Create(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("create session %s: %w", session.ID, ErrSessionExists)
	}
	stampCreate(session, s.now().UTC())
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, errNotFound)
	}
	return session.Clone(), nil
}

func (s *memorySessionStore) Put(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if current, ok := s.sessions[session.ID]; ok {
		session.Version = current.Version + 1
		session.CreatedAt = current.CreatedAt
		session.UpdatedAt = now
	} else {
		stampCreate(session, now)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *memorySessionStore) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Session, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	next, err = prepareNext(current, next, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("update session %s: %w", id, errNotFound)
	}
	if stored.Version != current.Version {
		return nil, fmt.Errorf("update session %s: %w", id, ErrVersionConflict)
	}
	s.sessions[id] = next.Clone()
	return next, nil
}

func (s *memorySessionStore) FindByOrderID(ctx context.Context, orderID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.Order != nil && session.Order.ID == orderID {
			return session.Clone(), nil
		}
	}
	return nil, fmt.Errorf("find session by order %s: %w", orderID, errNotFound)
}
