package core

import "errors"

// Errors
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidPeakSize = errors.New("invalid peak size")
	ErrOrderExists     = errors.New("order exists")
	ErrOrderNotFound   = errors.New("order not found")
)
