package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned before any work is done when the cart has no entries.
var ErrEmptyCart = errors.New("cart is empty")

// ErrPlacementFailed wraps storage failures. Nothing was persisted.
var ErrPlacementFailed = errors.New("order placement failed")

// UnknownBookError reports a cart entry whose book is not in the catalog.
// The whole order is rolled back.
type UnknownBookError struct {
	BookID int
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("book %d not found", e.BookID)
}
