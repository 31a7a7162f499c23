package checkout

import "errors"

var (
	ErrInvalidSelection        = errors.New("shipping option is not offered for this checkout")
	ErrSessionNotFound         = errors.New("checkout session not found")
	ErrPaymentRejected         = errors.New("payment rejected")
	ErrSessionAlreadyCompleted = errors.New("checkout session already completed")
)

// Validation message codes carried in Checkout.Messages.
const (
	CodeMissing  = "missing"
	CodeInvalid  = "invalid"
	CodeNotFound = "not_found"
)
