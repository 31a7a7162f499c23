package model

import "strings"

type TotalType string

const (
	TotalTypeSubtotal TotalType = "subtotal"
	TotalTypeShipping TotalType = "shipping"
	TotalTypeTotal    TotalType = "total"
)

// Total is one entry of an ordered totals list. Amount is in minor currency units.
type Total struct {
	Type   TotalType `json:"type"`
	Amount int64     `json:"amount"`
}

type CheckoutStatus string

const (
	CheckoutStatusIncomplete       CheckoutStatus = "incomplete"
	CheckoutStatusReadyForComplete CheckoutStatus = "ready_for_complete"
	CheckoutStatusCompleted        CheckoutStatus = "completed"
)

// Item is the catalog data bound to a line item at build time.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}

type LineItem struct {
	ID       string  `json:"id"`
	Item     Item    `json:"item"`
	Quantity int     `json:"quantity"`
	Totals   []Total `json:"totals"`
}

// Amount returns the line item's "total" entry.
func (li LineItem) Amount() int64 {
	for _, t := range li.Totals {
		if t.Type == TotalTypeTotal {
			return t.Amount
		}
	}
	return 0
}

func (li LineItem) Clone() LineItem {
	out := li
	out.Totals = append([]Total(nil), li.Totals...)
	return out
}

type Buyer struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// HasEmail reports whether the buyer carries a non-blank email address.
func (b *Buyer) HasEmail() bool {
	return b != nil && b.Email != nil && strings.TrimSpace(*b.Email) != ""
}

func (b *Buyer) Clone() *Buyer {
	if b == nil {
		return nil
	}
	return &Buyer{
		Email:     cloneString(b.Email),
		FirstName: cloneString(b.FirstName),
		LastName:  cloneString(b.LastName),
	}
}

// Merge returns a copy of b with every field present in patch replaced.
func (b *Buyer) Merge(patch *Buyer) *Buyer {
	if patch == nil {
		return b.Clone()
	}
	out := b.Clone()
	if out == nil {
		out = &Buyer{}
	}
	if patch.Email != nil {
		out.Email = cloneString(patch.Email)
	}
	if patch.FirstName != nil {
		out.FirstName = cloneString(patch.FirstName)
	}
	if patch.LastName != nil {
		out.LastName = cloneString(patch.LastName)
	}
	return out
}

type ShippingOption struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}

type CheckoutFulfillment struct {
	Options          []ShippingOption `json:"options"`
	SelectedOptionID *string          `json:"selected_option_id,omitempty"`
}

// ValidationError is a recoverable problem reported inside a Checkout response.
type ValidationError struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Link struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Checkout is an immutable snapshot produced by a build step.
type Checkout struct {
	ID          string              `json:"id"`
	Status      CheckoutStatus      `json:"status"`
	Currency    string              `json:"currency"`
	LineItems   []LineItem          `json:"line_items"`
	Buyer       *Buyer              `json:"buyer,omitempty"`
	Fulfillment CheckoutFulfillment `json:"fulfillment"`
	Totals      []Total             `json:"totals"`
	Links       []Link              `json:"links"`
	Messages    []ValidationError   `json:"messages"`
}

// Total returns the amount of the given totals entry.
func (c Checkout) Total(t TotalType) (int64, bool) {
	for _, total := range c.Totals {
		if total.Type == t {
			return total.Amount, true
		}
	}
	return 0, false
}

// SelectedShippingOption returns the offered option matching the selected id.
func (c Checkout) SelectedShippingOption() (ShippingOption, bool) {
	if c.Fulfillment.SelectedOptionID == nil {
		return ShippingOption{}, false
	}
	for _, opt := range c.Fulfillment.Options {
		if opt.ID == *c.Fulfillment.SelectedOptionID {
			return opt, true
		}
	}
	return ShippingOption{}, false
}

func (c Checkout) Clone() Checkout {
	out := c
	out.LineItems = make([]LineItem, len(c.LineItems))
	for i, li := range c.LineItems {
		out.LineItems[i] = li.Clone()
	}
	out.Buyer = c.Buyer.Clone()
	out.Fulfillment = CheckoutFulfillment{
		Options:          append([]ShippingOption{}, c.Fulfillment.Options...),
		SelectedOptionID: cloneString(c.Fulfillment.SelectedOptionID),
	}
	out.Totals = append([]Total{}, c.Totals...)
	out.Links = append([]Link{}, c.Links...)
	out.Messages = append([]ValidationError{}, c.Messages...)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
