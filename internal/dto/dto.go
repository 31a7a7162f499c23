package dto

import "ucp-merchant-demo/internal/model"

type ItemRef struct {
	ID string `json:"id"`
}

type LineItemRequest struct {
	Item     ItemRef `json:"item"`
	Quantity int     `json:"quantity"`
}

type CreateCheckoutRequest struct {
	LineItems []LineItemRequest `json:"line_items"`
	Buyer     *model.Buyer      `json:"buyer,omitempty"`
}

type FulfillmentRequest struct {
	SelectedOptionID *string `json:"selected_option_id,omitempty"`
}

// UpdateCheckoutRequest carries only the fields being changed. Omitted
// line_items keep the stored items; buyer fields are merged.
type UpdateCheckoutRequest struct {
	ID          string              `json:"id,omitempty"`
	LineItems   []LineItemRequest   `json:"line_items,omitempty"`
	Buyer       *model.Buyer        `json:"buyer,omitempty"`
	Fulfillment *FulfillmentRequest `json:"fulfillment,omitempty"`
}

func (r UpdateCheckoutRequest) SelectedOptionID() *string {
	if r.Fulfillment == nil {
		return nil
	}
	return r.Fulfillment.SelectedOptionID
}

// CompleteCheckoutRequest accepts the payment either nested under
// payment_data or as top-level token/type fields.
type CompleteCheckoutRequest struct {
	PaymentData *model.PaymentData `json:"payment_data,omitempty"`
	Token       string             `json:"token,omitempty"`
	Type        string             `json:"type,omitempty"`
}

func (r CompleteCheckoutRequest) Payment() model.PaymentData {
	if r.PaymentData != nil {
		return *r.PaymentData
	}
	return model.PaymentData{Token: r.Token, Type: r.Type}
}

type ProductSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Price        int64  `json:"price"`
	DisplayPrice string `json:"display_price"`
	Currency     string `json:"currency"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	WeightGrams  int32  `json:"weight_grams,omitempty"`
}

type DiscoveryResult struct {
	Items []ProductSummary `json:"items"`
}

type ProfileService struct {
	Version   string `json:"version"`
	Transport string `json:"transport"`
	Endpoint  string `json:"endpoint"`
}

// Profile is the merchant's /.well-known/ucp document.
type Profile struct {
	UCP      model.UCPContext          `json:"ucp"`
	Name     string                    `json:"name"`
	Services map[string]ProfileService `json:"services"`
	Links    []model.Link              `json:"links"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
