package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ucp-merchant-demo/internal/model"
)

// Finalizer turns a stored checkout session and a payment proof into an Order.
type Finalizer struct {
	baseURL string
	ucp     model.UCPContext
	newID   func() string
	now     func() time.Time
}

func NewFinalizer(baseURL string, ucp model.UCPContext) *Finalizer {
	return &Finalizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		ucp:     ucp,
		newID:   NewOrderID,
		now:     time.Now,
	}
}

// NewOrderID returns a fresh order identifier.
func NewOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Finalize validates the session state and payment, then maps the checkout
// snapshot into an Order. On error no Order is returned.
func (f *Finalizer) Finalize(session *model.Session, payment model.PaymentData) (*model.Order, error) {
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status.IsTerminal() {
		return nil, fmt.Errorf("complete %s: %w", session.ID, ErrSessionAlreadyCompleted)
	}
	if strings.TrimSpace(payment.Token) == "" {
		return nil, fmt.Errorf("complete %s: missing payment token: %w", session.ID, ErrPaymentRejected)
	}

	snapshot := session.Checkout
	lineItems := make([]model.OrderLineItem, len(snapshot.LineItems))
	for i, li := range snapshot.LineItems {
		lineItems[i] = model.OrderLineItem{
			ID:   li.ID,
			Item: li.Item,
			Quantity: model.OrderQuantity{
				Total:     li.Quantity,
				Fulfilled: 0,
			},
			Totals: append([]model.Total{}, li.Totals...),
			Status: model.OrderLineItemStatusProcessing,
		}
	}

	orderID := f.newID()
	return &model.Order{
		UCP: model.UCPContext{
			Version:      f.ucp.Version,
			Capabilities: append([]model.UCPCapability{}, f.ucp.Capabilities...),
		},
		ID:           orderID,
		CheckoutID:   session.ID,
		PermalinkURL: fmt.Sprintf("%s/orders/%s", f.baseURL, orderID),
		LineItems:    lineItems,
		Totals:       append([]model.Total{}, snapshot.Totals...),
		Fulfillment: model.OrderFulfillment{
			Expectations: []model.FulfillmentExpectation{},
			Events:       []model.FulfillmentEvent{},
		},
		CreatedAt: f.now().UTC(),
	}, nil
}
