package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNoOpenOrder              = errors.New("no open order")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
)

// InsufficientStockError aborts a checkout whose conditional stock decrement
// affected zero rows for the named product.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
