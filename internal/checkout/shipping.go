package checkout

import "ucp-merchant-demo/internal/model"

// Quote is the outcome of a shipping policy decision: either offered options
// with a default selection, or a validation error explaining why none apply.
type Quote struct {
	Options   []model.ShippingOption
	DefaultID string
	Error     *model.ValidationError
}

// maxAmount returns the largest offered option amount, 0 for a nil quote.
func (q *Quote) maxAmount() int64 {
	var largest int64
	if q == nil {
		return 0
	}
	for _, opt := range q.Options {
		if opt.Amount > largest {
			largest = opt.Amount
		}
	}
	return largest
}

type ShippingPolicy interface {
	Quote(buyer *model.Buyer) Quote
}

// ShippingPolicyFunc adapts a plain function to ShippingPolicy.
type ShippingPolicyFunc func(buyer *model.Buyer) Quote

func (f ShippingPolicyFunc) Quote(buyer *model.Buyer) Quote {
	return f(buyer)
}

const (
	ShippingStandardID = "ship_std"
	ShippingExpressID  = "ship_express"
)

func DefaultShippingOptions() []model.ShippingOption {
	return []model.ShippingOption{
		{ID: ShippingStandardID, Title: "Standard Shipping", Amount: 500, Description: "5-7 Days"},
		{ID: ShippingExpressID, Title: "Express Shipping", Amount: 1500, Description: "1-2 Days"},
	}
}

// TablePolicy offers a fixed option table to any buyer with an email address.
type TablePolicy struct {
	options   []model.ShippingOption
	defaultID string
}

// NewTablePolicy builds a policy over options. An empty defaultID selects the first option.
func NewTablePolicy(options []model.ShippingOption, defaultID string) *TablePolicy {
	if defaultID == "" && len(options) > 0 {
		defaultID = options[0].ID
	}
	return &TablePolicy{
		options:   append([]model.ShippingOption(nil), options...),
		defaultID: defaultID,
	}
}

func (p *TablePolicy) Quote(buyer *model.Buyer) Quote {
	if !buyer.HasEmail() {
		return Quote{
			Error: &model.ValidationError{
				Code:    CodeMissing,
				Path:    "$.buyer.email",
				Message: "Email required for shipping.",
			},
		}
	}
	return Quote{
		Options:   append([]model.ShippingOption(nil), p.options...),
		DefaultID: p.defaultID,
	}
}
