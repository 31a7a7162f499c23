// Package checkout holds the checkout session engine: the snapshot builder,
// the shipping policy and the order finalizer. Nothing in this package does
// I/O; storage and transport live in the repository and handler packages.
package checkout

import (
	"fmt"

	"ucp-merchant-demo/internal/model"
)

// Builder accumulates the parts of a checkout and produces immutable
// snapshots with Build. A Builder is not safe for concurrent use.
type Builder struct {
	id       string
	currency string

	items    []model.LineItem
	buyer    *model.Buyer
	options  []model.ShippingOption
	selected *string
	errors   []model.ValidationError
	links    []model.Link
}

func NewBuilder(id, currency string) *Builder {
	return &Builder{
		id:       id,
		currency: currency,
	}
}

// AddItem appends a line item. Items with the same id are not merged.
// The caller keeps unitPrice*quantity, summed over all items, within int64;
// Compose enforces that bound.
func (b *Builder) AddItem(itemID, title string, unitPrice int64, quantity int, imageURL string) {
	amount := unitPrice * int64(quantity)
	b.items = append(b.items, model.LineItem{
		ID: fmt.Sprintf("li_%d", len(b.items)+1),
		Item: model.Item{
			ID:       itemID,
			Title:    title,
			Price:    unitPrice,
			ImageURL: imageURL,
		},
		Quantity: quantity,
		Totals: []model.Total{
			{Type: model.TotalTypeSubtotal, Amount: amount},
			{Type: model.TotalTypeTotal, Amount: amount},
		},
	})
}

func (b *Builder) SetBuyer(buyer *model.Buyer) {
	b.buyer = buyer.Clone()
}

func (b *Builder) SetLinks(links []model.Link) {
	b.links = append([]model.Link(nil), links...)
}

func (b *Builder) AddShippingOption(id, title string, amount int64, description string) {
	b.options = append(b.options, model.ShippingOption{
		ID:          id,
		Title:       title,
		Amount:      amount,
		Description: description,
	})
}

// SelectShippingOption marks a previously added option as selected.
func (b *Builder) SelectShippingOption(id string) error {
	for _, opt := range b.options {
		if opt.ID == id {
			b.selected = &id
			return nil
		}
	}
	return fmt.Errorf("select %q: %w", id, ErrInvalidSelection)
}

func (b *Builder) AddError(code, path, message string) {
	b.errors = append(b.errors, model.ValidationError{
		Code:    code,
		Path:    path,
		Message: message,
	})
}

// Build computes totals and returns a snapshot sharing no memory with the builder.
func (b *Builder) Build() model.Checkout {
	items := make([]model.LineItem, len(b.items))
	var subtotal int64
	for i, li := range b.items {
		items[i] = li.Clone()
		subtotal += li.Amount()
	}

	totals := []model.Total{{Type: model.TotalTypeSubtotal, Amount: subtotal}}

	options := make([]model.ShippingOption, len(b.options))
	var shipping int64
	var selectedID *string
	for i, opt := range b.options {
		opt.Selected = b.selected != nil && opt.ID == *b.selected
		if opt.Selected {
			shipping = opt.Amount
			id := opt.ID
			selectedID = &id
		}
		options[i] = opt
	}
	if selectedID != nil {
		totals = append(totals, model.Total{Type: model.TotalTypeShipping, Amount: shipping})
	}
	totals = append(totals, model.Total{Type: model.TotalTypeTotal, Amount: subtotal + shipping})

	status := model.CheckoutStatusReadyForComplete
	if len(b.errors) > 0 || len(items) == 0 {
		status = model.CheckoutStatusIncomplete
	}

	return model.Checkout{
		ID:        b.id,
		Status:    status,
		Currency:  b.currency,
		LineItems: items,
		Buyer:     b.buyer.Clone(),
		Fulfillment: model.CheckoutFulfillment{
			Options:          options,
			SelectedOptionID: selectedID,
		},
		Totals:   totals,
		Links:    append([]model.Link{}, b.links...),
		Messages: append([]model.ValidationError{}, b.errors...),
	}
}
