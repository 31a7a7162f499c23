package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/dto"
	"ucp-merchant-demo/internal/model"
	"ucp-merchant-demo/internal/publisher"
	"ucp-merchant-demo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MerchantService interface {
	Discover(ctx context.Context, query string) (*dto.DiscoveryResult, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductSummary, error)
	Profile() dto.Profile

	CreateCheckout(ctx context.Context, req dto.CreateCheckoutRequest) (*model.Checkout, error)
	GetCheckout(ctx context.Context, id string) (*model.Checkout, error)
	UpdateCheckout(ctx context.Context, id string, req dto.UpdateCheckoutRequest) (*model.Checkout, error)
	CompleteCheckout(ctx context.Context, id string, payment model.PaymentData) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

type Options struct {
	Name     string
	BaseURL  string
	Currency string
	UCP      model.UCPContext
	Links    []model.Link
	// MaxRetries bounds how often a write lost to a concurrent writer is retried.
	MaxRetries int
}

type merchantServiceImpl struct {
	sessions  repository.SessionStore
	products  repository.ProductRepository
	orders    repository.OrderRepository
	idem      repository.IdempotencyRepository
	publisher publisher.OrderPublisher
	policy    checkout.ShippingPolicy
	finalizer *checkout.Finalizer
	locks     *keyedLocks
	logger    *zap.Logger
	opts      Options
	newID     func() string
}

func NewMerchantService(
	sessions repository.SessionStore,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	idem repository.IdempotencyRepository,
	orderPublisher publisher.OrderPublisher,
	policy checkout.ShippingPolicy,
	logger *zap.Logger,
	opts Options,
) MerchantService {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &merchantServiceImpl{
		sessions:  sessions,
		products:  products,
		orders:    orders,
		idem:      idem,
		publisher: orderPublisher,
		policy:    policy,
		finalizer: checkout.NewFinalizer(opts.BaseURL, OrderUCPContext(opts.UCP)),
		locks:     newKeyedLocks(),
		logger:    logger,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

func (s *merchantServiceImpl) CreateCheckout(ctx context.Context, req dto.CreateCheckoutRequest) (*model.Checkout, error) {
	key := IdempotencyKeyFromContext(ctx)
	if key != "" {
		unlock := s.locks.Lock("idempotency:" + key)
		defer unlock()

		existingID, err := s.idem.Lookup(ctx, key, repository.OperationCreateCheckout)
		if err != nil {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
		if existingID != "" {
			existing, err := s.GetCheckout(ctx, existingID)
			switch {
			case err == nil:
				s.logger.Info("replaying checkout creation",
					zap.String("checkout_id", existingID),
					zap.String("idempotency_key", key),
				)
				return existing, nil
			case errors.Is(err, checkout.ErrSessionNotFound):
				// the session expired or lived in a store that was reset
				s.logger.Info("idempotency key points at a missing checkout, creating a new one",
					zap.String("checkout_id", existingID),
					zap.String("idempotency_key", key),
				)
			default:
				return nil, err
			}
		}
	}

	items, err := s.resolveItems(ctx, req.LineItems)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	snapshot, err := checkout.Compose(checkout.Draft{
		ID:            id,
		Currency:      s.opts.Currency,
		Items:         items,
		Buyer:         req.Buyer,
		Links:         s.opts.Links,
		QuoteShipping: req.Buyer != nil,
	}, s.policy)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:       id,
		Status:   model.SessionStatusOpen,
		Checkout: snapshot,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	if key != "" {
		if err := s.idem.Remember(ctx, key, repository.OperationCreateCheckout, id); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.String("checkout_id", id), zap.Error(err))
		}
	}

	s.logger.Info("checkout session created",
		zap.String("checkout_id", id),
		zap.Int("line_items", len(snapshot.LineItems)),
		zap.String("status", string(snapshot.Status)),
	)
	return &snapshot, nil
}

func (s *merchantServiceImpl) GetCheckout(ctx context.Context, id string) (*model.Checkout, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &session.Checkout, nil
}

func (s *merchantServiceImpl) UpdateCheckout(ctx context.Context, id string, req dto.UpdateCheckoutRequest) (*model.Checkout, error) {
	update := checkout.Update{
		Buyer:          req.Buyer,
		SelectOptionID: req.SelectedOptionID(),
	}
	if req.LineItems != nil {
		items, err := s.resolveItems(ctx, req.LineItems)
		if err != nil {
			return nil, err
		}
		update.Items = items
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.updateWithRetry(ctx, id, func(current *model.Session) (*model.Session, error) {
		if current.Status.IsTerminal() {
			return nil, fmt.Errorf("update %s: %w", id, checkout.ErrSessionAlreadyCompleted)
		}
		next, err := checkout.Apply(current.Checkout, update, s.policy)
		if err != nil {
			return nil, err
		}
		current.Checkout = next
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout session updated",
		zap.String("checkout_id", id),
		zap.Int64("version", session.Version),
		zap.String("status", string(session.Checkout.Status)),
	)
	return &session.Checkout, nil
}

func (s *merchantServiceImpl) CompleteCheckout(ctx context.Context, id string, payment model.PaymentData) (*model.Order, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	key := IdempotencyKeyFromContext(ctx)
	if key != "" {
		order, err := s.replayCompletion(ctx, key, id)
		if err != nil || order != nil {
			return order, err
		}
	}

	session, err := s.updateWithRetry(ctx, id, func(current *model.Session) (*model.Session, error) {
		order, err := s.finalizer.Finalize(current, payment)
		if err != nil {
			return nil, err
		}
		current.Status = model.SessionStatusClosed
		current.Order = order
		current.Checkout.Status = model.CheckoutStatusCompleted
		return current, nil
	})
	if err != nil {
		s.logger.Warn("checkout completion refused", zap.String("checkout_id", id), zap.Error(err))
		return nil, err
	}
	order := session.Order

	if key != "" {
		if err := s.idem.Remember(ctx, key, repository.OperationCompleteCheckout, id); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.String("checkout_id", id), zap.Error(err))
		}
	}
	// the session record is authoritative; the read model and the event are best effort
	if err := s.orders.Save(ctx, order, session.Checkout.Currency); err != nil {
		s.logger.Warn("failed to save order read model", zap.String("order_id", order.ID), zap.Error(err))
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("failed to publish order created", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("checkout completed",
		zap.String("checkout_id", id),
		zap.String("order_id", order.ID),
	)
	return order, nil
}

// replayCompletion returns the order of an earlier completion made with the
// same key, or nil when the key is new.
func (s *merchantServiceImpl) replayCompletion(ctx context.Context, key, id string) (*model.Order, error) {
	checkoutID, err := s.idem.Lookup(ctx, key, repository.OperationCompleteCheckout)
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if checkoutID == "" {
		return nil, nil
	}
	if checkoutID != id {
		return nil, fmt.Errorf("complete %s: %w", id, repository.ErrIdempotencyKeyReused)
	}

	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, checkout.ErrSessionNotFound) {
		// the session is gone but the order may survive in the read model
		order, findErr := s.orders.FindByCheckoutID(ctx, id)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrOrderNotFound) {
				return nil, err
			}
			return nil, findErr
		}
		s.logger.Info("replaying checkout completion from order read model",
			zap.String("checkout_id", id),
			zap.String("order_id", order.ID),
		)
		return order, nil
	}
	if err != nil {
		return nil, err
	}
	if session.Order == nil {
		return nil, nil
	}
	s.logger.Info("replaying checkout completion",
		zap.String("checkout_id", id),
		zap.String("order_id", session.Order.ID),
	)
	return session.Order, nil
}

// GetOrder reads the order read model and falls back to the completed session
// when the read model missed the write.
func (s *merchantServiceImpl) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.FindByOrderID(ctx, id)
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return order, err
	}

	session, sessionErr := s.sessions.FindByOrderID(ctx, id)
	if errors.Is(sessionErr, checkout.ErrSessionNotFound) {
		return nil, err
	}
	if sessionErr != nil {
		return nil, sessionErr
	}

	if saveErr := s.orders.Save(ctx, session.Order, session.Checkout.Currency); saveErr != nil {
		s.logger.Warn("failed to repair order read model", zap.String("order_id", id), zap.Error(saveErr))
	}
	return session.Order, nil
}

func (s *merchantServiceImpl) updateWithRetry(ctx context.Context, id string, fn repository.UpdateFunc) (*model.Session, error) {
	var err error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		var session *model.Session
		session, err = s.sessions.Update(ctx, id, fn)
		if !errors.Is(err, repository.ErrVersionConflict) {
			return session, err
		}
		s.logger.Debug("checkout session version conflict, retrying",
			zap.String("checkout_id", id),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, err
}

// resolveItems looks up every requested item in the catalog. Unknown items
// keep a nil Product so the builder can report them.
func (s *merchantServiceImpl) resolveItems(ctx context.Context, reqs []dto.LineItemRequest) ([]checkout.ItemInput, error) {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.Item.ID)
	}

	products, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]checkout.ItemInput, len(reqs))
	for i, r := range reqs {
		items[i] = checkout.ItemInput{ItemID: r.Item.ID, Quantity: r.Quantity}
		if p, ok := byID[r.Item.ID]; ok {
			items[i].Product = &model.Item{
				ID:       p.ID,
				Title:    p.Title,
				Price:    p.Price,
				ImageURL: p.ImageURL,
			}
		}
	}
	return items, nil
}
