package model

import "time"

const OrderLineItemStatusProcessing = "processing"

type UCPCapability struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// UCPContext advertises the protocol version and capabilities active for a response.
type UCPContext struct {
	Version      string          `json:"version"`
	Capabilities []UCPCapability `json:"capabilities"`
}

type OrderQuantity struct {
	Total     int `json:"total"`
	Fulfilled int `json:"fulfilled"`
}

type OrderLineItem struct {
	ID       string        `json:"id"`
	Item     Item          `json:"item"`
	Quantity OrderQuantity `json:"quantity"`
	Totals   []Total       `json:"totals"`
	Status   string        `json:"status"`
}

type FulfillmentExpectation struct {
	ID          string   `json:"id"`
	LineItemIDs []string `json:"line_item_ids"`
	Description string   `json:"description,omitempty"`
}

type FulfillmentEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	LineItemIDs []string  `json:"line_item_ids"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type OrderFulfillment struct {
	Expectations []FulfillmentExpectation `json:"expectations"`
	Events       []FulfillmentEvent       `json:"events"`
}

type Order struct {
	UCP          UCPContext       `json:"ucp"`
	ID           string           `json:"id"`
	CheckoutID   string           `json:"checkout_id"`
	PermalinkURL string           `json:"permalink_url"`
	LineItems    []OrderLineItem  `json:"line_items"`
	Totals       []Total          `json:"totals"`
	Fulfillment  OrderFulfillment `json:"fulfillment"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.UCP.Capabilities = append([]UCPCapability{}, o.UCP.Capabilities...)
	out.LineItems = make([]OrderLineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		li.Totals = append([]Total{}, li.Totals...)
		out.LineItems[i] = li
	}
	out.Totals = append([]Total{}, o.Totals...)
	out.Fulfillment = OrderFulfillment{
		Expectations: append([]FulfillmentExpectation{}, o.Fulfillment.Expectations...),
		Events:       append([]FulfillmentEvent{}, o.Fulfillment.Events...),
	}
	return &out
}

// PaymentData is the payment proof supplied on completion.
type PaymentData struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}
