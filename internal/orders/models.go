package orders

import (
	"github.com/shopspring/decimal"
)

// Customer is the authenticated identity the core consumes; it is produced by
// the auth collaborator.
type Customer struct {
	ID    string
	Email string
}

type ShippingInfo struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
}

// CartLine is one order_items row of the open order, joined with the product
// name for display. Price is the snapshot taken when the line was added, never
// the live catalog price.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CartTotal is Σ(quantity × price_at_purchase) over the given lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
