package checkout

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/notify"
	"github.com/essentials-shop/storefront/internal/orders"
)

type Store interface {
	OpenOrder(ctx context.Context, userID string) (string, error)
	Lines(ctx context.Context, orderID string) ([]orders.CartLine, error)
	ConfirmCashOnDelivery(ctx context.Context, orderID string, ship orders.ShippingInfo) ([]orders.CartLine, decimal.Decimal, error)
	PlaceAwaitingPayment(ctx context.Context, orderID string, ship orders.ShippingInfo) (decimal.Decimal, error)
}

// Service turns the open cart into a priced order. Stock mutation and status
// transitions are the only durable side effects; notification dispatch is
// best-effort after the confirming transaction commits.
type Service struct {
	Store      Store
	Dispatcher notify.Dispatcher
	// OrdersInbox receives the confirmation summary, with the customer on
	// Reply-To.
	OrdersInbox string
	Log         *zap.Logger
}

type Result struct {
	OrderID  string          `json:"orderId"`
	Status   orders.Status   `json:"status"`
	Total    decimal.Decimal `json:"totalAmount"`
	Notified bool            `json:"notified,omitempty"`
}

func (s *Service) Checkout(ctx context.Context, customer orders.Customer, ship orders.ShippingInfo, method orders.PaymentMethod) (Result, error) {
	switch method {
	case orders.PaymentCashOnDelivery, orders.PaymentCreditCard:
	default:
		return Result{}, orders.ErrUnsupportedPaymentMethod
	}

	orderID, err := s.Store.OpenOrder(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, orders.ErrNoOpenOrder) {
			return Result{}, orders.ErrEmptyCart
		}
		return Result{}, err
	}
	lines, err := s.Store.Lines(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		return Result{}, orders.ErrEmptyCart
	}

	if method == orders.PaymentCreditCard {
		total, err := s.Store.PlaceAwaitingPayment(ctx, orderID, ship)
		if err != nil {
			return Result{}, err
		}
		return Result{
			OrderID: orderID,
			Status:  orders.StatusAwaitingPaymentCapture,
			Total:   total,
		}, nil
	}

	// frozen is the item set the confirming transaction actually decremented;
	// the result total and the confirmation summary are built from it, not from
	// the pre-transaction read above.
	frozen, total, err := s.Store.ConfirmCashOnDelivery(ctx, orderID, ship)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		OrderID:  orderID,
		Status:   orders.StatusConfirmed,
		Total:    total,
		Notified: true,
	}
	msg := notify.BuildOrderConfirmation(s.OrdersInbox, notify.OrderSummary{
		OrderID:       orderID,
		CustomerName:  ship.FullName,
		CustomerEmail: customer.Email,
		Shipping:      ship,
		PaymentMethod: method,
		Lines:         frozen,
		Total:         total,
	})
	if err := s.Dispatcher.Dispatch(ctx, orderID, msg); err != nil {
		// the order stays confirmed; surface the miss to the operator
		s.Log.Error("confirmation dispatch failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		res.Notified = false
	}
	return res, nil
}
