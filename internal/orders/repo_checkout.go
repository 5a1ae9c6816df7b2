package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CheckoutRepo performs the cart→order transition. The cash-on-delivery path
// runs as one transaction: the pending transition, every conditional stock
// decrement and the confirmation either all commit or none do.
type CheckoutRepo struct{ DB *pgxpool.Pool }

func (r *CheckoutRepo) OpenOrder(ctx context.Context, userID string) (string, error) {
	return openOrder(ctx, r.DB, userID)
}

func (r *CheckoutRepo) Lines(ctx context.Context, orderID string) ([]CartLine, error) {
	return cartLines(ctx, r.DB, orderID)
}

// ConfirmCashOnDelivery freezes shipping info, decrements stock per item with a
// compare-and-decrement, and confirms the order. One in-tx item load is the
// single source for the decrements, the persisted total and the returned lines,
// so they cannot diverge under concurrent cart mutation. A zero-row decrement
// rolls the whole transaction back with InsufficientStockError; the order then
// still has status 'cart' and stays re-checkoutable.
func (r *CheckoutRepo) ConfirmCashOnDelivery(ctx context.Context, orderID string, ship ShippingInfo) ([]CartLine, decimal.Decimal, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	if _, err := placePending(ctx, tx, orderID, ship, PaymentCashOnDelivery); err != nil {
		return nil, decimal.Zero, err
	}

	lines, err := cartLines(ctx, tx, orderID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}
	total := CartTotal(lines)

	for _, l := range lines {
		ct, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $2
			WHERE id = $1 AND quantity >= $2
		`, l.ProductID, l.Quantity)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return nil, decimal.Zero, &InsufficientStockError{ProductID: l.ProductID}
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET total_amount = $2 WHERE id = $1`, orderID, total); err != nil {
		return nil, decimal.Zero, fmt.Errorf("freeze total: %w", err)
	}
	if err := updateStatus(ctx, tx, orderID, StatusPending, StatusConfirmed); err != nil {
		return nil, decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}
	return lines, total, nil
}

// PlaceAwaitingPayment freezes shipping info and total without touching stock;
// the external payment capture flow picks the order up from there.
func (r *CheckoutRepo) PlaceAwaitingPayment(ctx context.Context, orderID string, ship ShippingInfo) (decimal.Decimal, error) {
	return placePending(ctx, r.DB, orderID, ship, PaymentCreditCard)
}

// placePending is the commit point: after it the order is no longer a cart.
// Total and status flip in one statement, so the frozen total always matches
// the items the statement saw. The status guard makes a second checkout of the
// same order surface as ErrNoOpenOrder.
func placePending(ctx context.Context, db querier, orderID string, ship ShippingInfo, method PaymentMethod) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.QueryRow(ctx, `
		UPDATE orders
		SET status = 'pending',
		    full_name = $2,
		    shipping_address = $3,
		    city = $4,
		    postal_code = $5,
		    payment_method = $6,
		    total_amount = (
		        SELECT COALESCE(SUM(oi.quantity * oi.price_at_purchase), 0)
		        FROM order_items oi WHERE oi.order_id = orders.id
		    ),
		    placed_at = now()
		WHERE id = $1 AND status = 'cart'
		RETURNING total_amount
	`, orderID, ship.FullName, ship.Address, ship.City, ship.PostalCode, string(method)).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNoOpenOrder
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("place order: %w", err)
	}
	return total, nil
}

// updateStatus applies a guarded status transition checked against the
// transition table.
func updateStatus(ctx context.Context, db querier, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid status transition %s -> %s", from, to)
	}
	ct, err := db.Exec(ctx, `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, orderID, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s is not %s", orderID, from)
	}
	return nil
}
