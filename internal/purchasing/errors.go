package purchasing

import "errors"

var (
	ErrNothingToOrder    = errors.New("no materials need reordering")
	ErrOrderNotFound     = errors.New("request order not found")
	ErrItemNotFound      = errors.New("request order item not found")
	ErrInvalidQuantity   = errors.New("received quantity must be greater than zero")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTransition = errors.New("request order status does not allow this change")
)
