package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type Product struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reader serves uncached read-only catalog lookups; every call reflects the
// latest committed value.
type Reader struct{ DB *pgxpool.Pool }

func (r *Reader) ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.DB.QueryRow(ctx, `SELECT price FROM products WHERE id = $1`, productID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrProductNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("product price: %w", err)
	}
	return price, nil
}

func (r *Reader) ProductStock(ctx context.Context, productID string) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("product stock: %w", err)
	}
	return qty, nil
}

func (r *Reader) Product(ctx context.Context, productID string) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, COALESCE(category_id::text, ''), name, description, price, image_url, quantity, created_at
		FROM products WHERE id = $1
	`, productID)
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Quantity, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("product: %w", err)
	}
	return p, nil
}

func (r *Reader) Products(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `
		SELECT id, COALESCE(category_id::text, ''), name, description, price, image_url, quantity, created_at
		FROM products ORDER BY name
	`)
}

func (r *Reader) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ProductsByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return r.queryProducts(ctx, `
		SELECT id, COALESCE(category_id::text, ''), name, description, price, image_url, quantity, created_at
		FROM products WHERE category_id = $1 ORDER BY created_at DESC
	`, categoryID)
}

func (r *Reader) Search(ctx context.Context, query string) ([]Product, error) {
	return r.queryProducts(ctx, `
		SELECT id, COALESCE(category_id::text, ''), name, description, price, image_url, quantity, created_at
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY name
	`, "%"+query+"%")
}

func (r *Reader) queryProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
