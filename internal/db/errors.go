package db

import "errors"

// Storage sentinels. Services pass these through and handlers map them to
// HTTP responses.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order payment is not pending")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
)
