package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/essentials-shop/storefront/internal/orders"
)

// Catalog yields the current product price used as the line's snapshot.
type Catalog interface {
	ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error)
}

type Store interface {
	OpenOrder(ctx context.Context, userID string) (string, error)
	EnsureOpenOrder(ctx context.Context, userID string) (string, error)
	UpsertLineIncrement(ctx context.Context, orderID, productID string, price decimal.Decimal) error
	IncrementLine(ctx context.Context, orderID, productID string) error
	DecrementOrDeleteLine(ctx context.Context, orderID, productID string) error
	DeleteLine(ctx context.Context, orderID, productID string) error
	Lines(ctx context.Context, orderID string) ([]orders.CartLine, error)
	CountItems(ctx context.Context, userID string) (int, error)
}

// Service is the cart manager: it mutates the user's open order while its
// status is 'cart'. An order frozen by checkout no longer matches the
// open-order lookup, so the next add starts a fresh cart.
type Service struct {
	Store   Store
	Catalog Catalog
}

type View struct {
	Items      []orders.CartLine `json:"items"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

// AddItem snapshots the current catalog price and inserts or bumps the line.
// Stock is not checked here; reservation happens at checkout.
func (s *Service) AddItem(ctx context.Context, userID, productID string) (int, error) {
	price, err := s.Catalog.ProductPrice(ctx, productID)
	if err != nil {
		return 0, err
	}
	orderID, err := s.Store.EnsureOpenOrder(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.Store.UpsertLineIncrement(ctx, orderID, productID, price); err != nil {
		return 0, err
	}
	return s.Store.CountItems(ctx, userID)
}

// IncrementItem is a no-op when the user has no open order or the product is
// not in it.
func (s *Service) IncrementItem(ctx context.Context, userID, productID string) (int, error) {
	orderID, err := s.Store.OpenOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, orders.ErrNoOpenOrder) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.Store.IncrementLine(ctx, orderID, productID); err != nil {
		return 0, err
	}
	return s.Store.CountItems(ctx, userID)
}

func (s *Service) DecrementItem(ctx context.Context, userID, productID string) (int, error) {
	orderID, err := s.Store.OpenOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, orders.ErrNoOpenOrder) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.Store.DecrementOrDeleteLine(ctx, orderID, productID); err != nil {
		return 0, err
	}
	return s.Store.CountItems(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (int, error) {
	orderID, err := s.Store.OpenOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, orders.ErrNoOpenOrder) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.Store.DeleteLine(ctx, orderID, productID); err != nil {
		return 0, err
	}
	return s.Store.CountItems(ctx, userID)
}

// Cart returns the open order's lines and their snapshot-price total. No open
// order is an empty cart, not an error.
func (s *Service) Cart(ctx context.Context, userID string) (View, error) {
	orderID, err := s.Store.OpenOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, orders.ErrNoOpenOrder) {
			return View{Items: []orders.CartLine{}, TotalPrice: decimal.Zero}, nil
		}
		return View{}, err
	}
	lines, err := s.Store.Lines(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	if lines == nil {
		lines = []orders.CartLine{}
	}
	return View{Items: lines, TotalPrice: orders.CartTotal(lines)}, nil
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.Store.CountItems(ctx, userID)
}
