package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CartRepo owns the mutable open order (status='cart') of a user. Every
// mutation is a single conditional statement so concurrent requests on the
// same line never lose updates.
type CartRepo struct{ DB *pgxpool.Pool }

func (r *CartRepo) OpenOrder(ctx context.Context, userID string) (string, error) {
	return openOrder(ctx, r.DB, userID)
}

// EnsureOpenOrder returns the user's open order, creating it lazily on first
// add-to-cart. A concurrent create loses against the partial unique index and
// falls back to re-reading the winner's row.
func (r *CartRepo) EnsureOpenOrder(ctx context.Context, userID string) (string, error) {
	id, err := openOrder(ctx, r.DB, userID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNoOpenOrder) {
		return "", err
	}

	id = uuid.NewString()
	_, err = r.DB.Exec(ctx, `INSERT INTO orders(id, user_id, status) VALUES ($1, $2, 'cart')`, id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return openOrder(ctx, r.DB, userID)
		}
		return "", fmt.Errorf("create open order: %w", err)
	}
	return id, nil
}

// UpsertLineIncrement inserts the line with quantity 1 and the snapshot price,
// or bumps the quantity when the product is already in the cart. The stored
// price is never touched on conflict.
func (r *CartRepo) UpsertLineIncrement(ctx context.Context, orderID, productID string, price decimal.Decimal) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_items(order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = order_items.quantity + 1
	`, orderID, productID, price)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

// IncrementLine is a no-op when the line is absent.
func (r *CartRepo) IncrementLine(ctx context.Context, orderID, productID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE order_items SET quantity = quantity + 1
		WHERE order_id = $1 AND product_id = $2
	`, orderID, productID)
	if err != nil {
		return fmt.Errorf("increment cart line: %w", err)
	}
	return nil
}

// DecrementOrDeleteLine decrements a line above quantity 1 and deletes it
// otherwise, so a quantity of 0 is never stored.
func (r *CartRepo) DecrementOrDeleteLine(ctx context.Context, orderID, productID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE order_items SET quantity = quantity - 1
		WHERE order_id = $1 AND product_id = $2 AND quantity > 1
	`, orderID, productID)
	if err != nil {
		return fmt.Errorf("decrement cart line: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}
	return r.DeleteLine(ctx, orderID, productID)
}

func (r *CartRepo) DeleteLine(ctx context.Context, orderID, productID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM order_items WHERE order_id = $1 AND product_id = $2
	`, orderID, productID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) Lines(ctx context.Context, orderID string) ([]CartLine, error) {
	return cartLines(ctx, r.DB, orderID)
}

// CountItems is the cart badge query: Σ quantities over the open order, zero
// when there is none.
func (r *CartRepo) CountItems(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.user_id = $1 AND o.status = 'cart'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return n, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func openOrder(ctx context.Context, db querier, userID string) (string, error) {
	var id string
	err := db.QueryRow(ctx, `SELECT id FROM orders WHERE user_id = $1 AND status = 'cart'`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoOpenOrder
	}
	if err != nil {
		return "", fmt.Errorf("find open order: %w", err)
	}
	return id, nil
}

func cartLines(ctx context.Context, db querier, orderID string) ([]CartLine, error) {
	rows, err := db.Query(ctx, `
		SELECT oi.product_id, p.name, oi.quantity, oi.price_at_purchase
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY p.name
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var out []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
