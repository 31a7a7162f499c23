package checkout

import (
	"fmt"
	"math"

	"ucp-merchant-demo/internal/model"
)

// ItemInput is a requested line item together with the catalog data the
// caller resolved for it. Product is nil when the catalog has no such item.
type ItemInput struct {
	ItemID   string
	Quantity int
	Product  *model.Item
}

// Draft fully describes a checkout snapshot to be built.
type Draft struct {
	ID            string
	Currency      string
	Items         []ItemInput
	Buyer         *model.Buyer
	Links         []model.Link
	QuoteShipping bool

	// SelectOptionID is an explicit choice and must be among the offered options.
	SelectOptionID *string
	// PreferOptionID is a carried-over choice, ignored when no longer offered.
	PreferOptionID *string
}

// Update describes the changes an update request applies to a stored snapshot.
type Update struct {
	Items          []ItemInput // nil keeps the stored line items
	Buyer          *model.Buyer
	SelectOptionID *string
}

// Compose builds a snapshot from a draft. The only hard failure is an
// explicit selection of an option the policy did not offer.
func Compose(d Draft, policy ShippingPolicy) (model.Checkout, error) {
	b := NewBuilder(d.ID, d.Currency)
	b.SetLinks(d.Links)

	var quote *Quote
	if d.QuoteShipping && policy != nil {
		q := policy.Quote(d.Buyer)
		quote = &q
	}

	// every total, shipping included, must stay within int64
	headroom := int64(math.MaxInt64) - quote.maxAmount()
	var subtotal int64
	for i, in := range d.Items {
		path := fmt.Sprintf("$.line_items[%d]", i)
		switch {
		case in.Product == nil:
			b.AddError(CodeNotFound, path+".item.id", fmt.Sprintf("Product %q not found.", in.ItemID))
		case in.Quantity < 1:
			b.AddError(CodeInvalid, path+".quantity", "Quantity must be at least 1.")
		case !fitsAmount(in.Product.Price, in.Quantity, headroom-subtotal):
			b.AddError(CodeInvalid, path+".quantity", "Quantity exceeds the maximum order amount.")
		default:
			b.AddItem(in.Product.ID, in.Product.Title, in.Product.Price, in.Quantity, in.Product.ImageURL)
			subtotal += in.Product.Price * int64(in.Quantity)
		}
	}

	if d.Buyer != nil {
		b.SetBuyer(d.Buyer)
	}

	if quote != nil {
		if err := applyQuote(b, *quote, d); err != nil {
			return model.Checkout{}, err
		}
	}

	return b.Build(), nil
}

// fitsAmount reports whether unitPrice*quantity is at most limit.
func fitsAmount(unitPrice int64, quantity int, limit int64) bool {
	if unitPrice <= 0 {
		return true
	}
	if limit < 0 {
		return false
	}
	return int64(quantity) <= limit/unitPrice
}

func applyQuote(b *Builder, q Quote, d Draft) error {
	if q.Error != nil {
		b.AddError(q.Error.Code, q.Error.Path, q.Error.Message)
	} else {
		for _, opt := range q.Options {
			b.AddShippingOption(opt.ID, opt.Title, opt.Amount, opt.Description)
		}
	}

	if d.SelectOptionID != nil {
		return b.SelectShippingOption(*d.SelectOptionID)
	}
	if q.Error != nil {
		return nil
	}
	if d.PreferOptionID != nil && b.SelectShippingOption(*d.PreferOptionID) == nil {
		return nil
	}
	if q.DefaultID != "" {
		return b.SelectShippingOption(q.DefaultID)
	}
	return nil
}

// Apply layers an update onto a prior snapshot and returns the new snapshot.
// Stored line items and buyer fields survive unless the update replaces them.
func Apply(prior model.Checkout, u Update, policy ShippingPolicy) (model.Checkout, error) {
	items := u.Items
	if items == nil {
		items = ItemsFromLineItems(prior.LineItems)
	}

	return Compose(Draft{
		ID:             prior.ID,
		Currency:       prior.Currency,
		Items:          items,
		Buyer:          prior.Buyer.Merge(u.Buyer),
		Links:          prior.Links,
		QuoteShipping:  true,
		SelectOptionID: u.SelectOptionID,
		PreferOptionID: prior.Fulfillment.SelectedOptionID,
	}, policy)
}

// ItemsFromLineItems turns built line items back into inputs, keeping the
// price bound when they were first added.
func ItemsFromLineItems(lineItems []model.LineItem) []ItemInput {
	out := make([]ItemInput, len(lineItems))
	for i, li := range lineItems {
		item := li.Item
		out[i] = ItemInput{
			ItemID:   item.ID,
			Quantity: li.Quantity,
			Product:  &item,
		}
	}
	return out
}
