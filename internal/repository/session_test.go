package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/client"
	"ucp-merchant-demo/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func newSession(id string) *model.Session {
	b := checkout.NewBuilder(id, "USD")
	b.AddItem("sku_pixel", "Google Pixel 9 Pro", 99900, 1, "https://store.google.com/pixel.jpg")
	return &model.Session{
		ID:       id,
		Status:   model.SessionStatusOpen,
		Checkout: b.Build(),
	}
}

type storeFactory struct {
	name string
	new  func(t *testing.T) SessionStore
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{
			name:             "memory",
			new:  func(*testing.T) SessionStore { return NewMemorySessionStore() },
		},
		{
			name: "gorm",
			new:  func(t *testing.T) SessionStore { return NewSessionRepository(setupTestDB(t)) },
		},
		{
			name: "redis",
			new: func(t *testing.T) SessionStore {
				rdb, _ := setupTestRedis(t)
				return NewRedisSessionStore(rdb, 0)
			},
		},
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)

			s := newSession("cs_1")
			require.NoError(t, store.Create(ctx, s))
			assert.Equal(t, int64(1), s.Version)

			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.Version)
			assert.Equal(t, model.SessionStatusOpen, got.Status)
			assert.Equal(t, s.Checkout, got.Checkout)
			assert.Nil(t, got.Order)
		})
	}
}

func TestSessionStore_CreateDuplicate(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)

			require.NoError(t, store.Create(ctx, newSession("cs_1")))
			err := store.Create(ctx, newSession("cs_1"))
			assert.ErrorIs(t, err, ErrSessionExists)
		})
	}
}

func TestSessionStore_GetMissing(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			_, err := f.new(t).Get(context.Background(), "cs_missing")
			assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
		})
	}
}

func TestSessionStore_PutBumpsVersion(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)

			s := newSession("cs_1")
			require.NoError(t, store.Put(ctx, s))
			assert.Equal(t, int64(1), s.Version)

			s.Checkout.Currency = "EUR"
			require.NoError(t, store.Put(ctx, s))
			assert.Equal(t, int64(2), s.Version)

			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.Version)
			assert.Equal(t, "EUR", got.Checkout.Currency)
		})
	}
}

func TestSessionStore_Update(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)
			require.NoError(t, store.Create(ctx, newSession("cs_1")))

			updated, err := store.Update(ctx, "cs_1", func(current *model.Session) (*model.Session, error) {
				current.Status = model.SessionStatusClosed
				current.Order = &model.Order{ID: "ord_1", CheckoutID: current.ID}
				return current, nil
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), updated.Version)

			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.Version)
			assert.Equal(t, model.SessionStatusClosed, got.Status)
			require.NotNil(t, got.Order)
			assert.Equal(t, "ord_1", got.Order.ID)
		})
	}
}

func TestSessionStore_FindByOrderID(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)
			require.NoError(t, store.Create(ctx, newSession("cs_1")))
			require.NoError(t, store.Create(ctx, newSession("cs_2")))

			_, err := store.FindByOrderID(ctx, "ord_1")
			assert.ErrorIs(t, err, checkout.ErrSessionNotFound)

			_, err = store.Update(ctx, "cs_2", func(current *model.Session) (*model.Session, error) {
				current.Status = model.SessionStatusClosed
				current.Order = &model.Order{ID: "ord_1", CheckoutID: current.ID}
				return current, nil
			})
			require.NoError(t, err)

			got, err := store.FindByOrderID(ctx, "ord_1")
			require.NoError(t, err)
			assert.Equal(t, "cs_2", got.ID)
			require.NotNil(t, got.Order)
			assert.Equal(t, "ord_1", got.Order.ID)
		})
	}
}

func TestSessionStore_UpdateErrorLeavesSessionUntouched(t *testing.T) {
	boom := errors.New("boom")
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)
			require.NoError(t, store.Create(ctx, newSession("cs_1")))

			_, err := store.Update(ctx, "cs_1", func(current *model.Session) (*model.Session, error) {
				current.Status = model.SessionStatusClosed
				return nil, boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.Version)
			assert.Equal(t, model.SessionStatusOpen, got.Status)
		})
	}
}

func TestSessionStore_UpdateMissing(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			_, err := f.new(t).Update(context.Background(), "cs_missing", func(s *model.Session) (*model.Session, error) {
				return s, nil
			})
			assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
		})
	}
}

func TestSessionStore_UpdateLosesRace(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)
			require.NoError(t, store.Create(ctx, newSession("cs_1")))

			_, err := store.Update(ctx, "cs_1", func(current *model.Session) (*model.Session, error) {
				// another writer commits first
				require.NoError(t, store.Put(ctx, newSession("cs_1")))
				current.Checkout.Currency = "EUR"
				return current, nil
			})
			assert.ErrorIs(t, err, ErrVersionConflict)

			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.Version)
			assert.Equal(t, "USD", got.Checkout.Currency)
		})
	}
}

func TestSessionStore_ResultsDoNotAliasStoredState(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.new(t)
			s := newSession("cs_1")
			require.NoError(t, store.Create(ctx, s))

			s.Checkout.LineItems[0].Quantity = 42
			got, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			got.Checkout.Totals[0].Amount = 1

			again, err := store.Get(ctx, "cs_1")
			require.NoError(t, err)
			assert.Equal(t, 1, again.Checkout.LineItems[0].Quantity)
			assert.Equal(t, int64(99900), again.Checkout.Totals[0].Amount)
		})
	}
}

func TestRedisSessionStore_KeyAndTTL(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	store := NewRedisSessionStore(rdb, 0)
	require.NoError(t, store.Create(context.Background(), newSession("cs_1")))

	assert.True(t, mr.Exists("checkout:session:cs_1"))
	assert.Zero(t, mr.TTL("checkout:session:cs_1"))
}

func TestRedisSessionStore_IndexesOrders(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	store := NewRedisSessionStore(rdb, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newSession("cs_1")))

	_, err := store.Update(ctx, "cs_1", func(current *model.Session) (*model.Session, error) {
		current.Order = &model.Order{ID: "ord_1", CheckoutID: current.ID}
		return current, nil
	})
	require.NoError(t, err)

	id, err := mr.Get("checkout:order:ord_1")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", id)
	assert.Equal(t, time.Hour, mr.TTL("checkout:order:ord_1"))
}
