package services

import "errors"

var (
	ErrEmptyCart            = errors.New("the cart is empty")
	ErrCheckoutInProgress   = errors.New("a checkout for this cart is already in progress")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidToken         = errors.New("invalid or expired token")
)
