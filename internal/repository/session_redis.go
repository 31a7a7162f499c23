package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ucp-merchant-demo/internal/model"

	"github.com/redis/go-redis/v9"
)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSessionStore keeps each session as a JSON document under
// checkout:session:<id>, and completed sessions are indexed under
// checkout:order:<order id>. A zero ttl keeps sessions until deleted.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *redisSessionStore) Create(ctx context.Context, session *model.Session) error {
	stampCreate(session, s.now().UTC())
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("create session %s: %w", session.ID, ErrSessionExists)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.get(ctx, s.client, id)
}

func (s *redisSessionStore) get(ctx context.Context, c redis.Cmdable, id string) (*model.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *redisSessionStore) Put(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		now := s.now().UTC()
		current, err := s.get(ctx, tx, session.ID)
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
		return s.write(ctx, tx, key, session)
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("put session %s: %w", session.ID, ErrVersionConflict)
	}
	return err
}

func (s *redisSessionStore) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Session, error) {
	key := sessionKey(id)
	var next *model.Session
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		updated, err := fn(current.Clone())
		if err != nil {
			return err
		}
		updated, err = prepareNext(current, updated, s.now().UTC())
		if err != nil {
			return fmt.Errorf("update session %s: %w", id, err)
		}

		if err := s.write(ctx, tx, key, updated); err != nil {
			return err
		}
		next = updated
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("update session %s: %w", id, ErrVersionConflict)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// write queues the SET inside MULTI/EXEC; EXEC fails when the watched key changed.
func (s *redisSessionStore) write(ctx context.Context, tx *redis.Tx, key string, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, s.ttl)
		if session.Order != nil {
			pipe.Set(ctx, orderIndexKey(session.Order.ID), session.ID, s.ttl)
		}
		return nil
	})
	return err
}

func (s *redisSessionStore) FindByOrderID(ctx context.Context, orderID string) (*model.Session, error) {
	id, err := s.client.Get(ctx, orderIndexKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find session by order %s: %w", orderID, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return s.get(ctx, s.client, id)
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

func orderIndexKey(orderID string) string {
	return fmt.Sprintf("checkout:order:%s", orderID)
}
