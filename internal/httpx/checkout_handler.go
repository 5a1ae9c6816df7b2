package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/checkout"
	"github.com/essentials-shop/storefront/internal/orders"
	"github.com/essentials-shop/storefront/internal/redisx"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Redis    *redis.Client
	Log      *zap.Logger
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.postCheckout)
}

type checkoutReq struct {
	FullName      string `json:"fullName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Zip           string `json:"zip"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *CheckoutHandler) postCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, h.Log, auth.ErrAuthenticationRequired)
		return
	}

	req, err := parseCheckoutReq(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	method, err := orders.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, orders.Customer{ID: user.ID, Email: user.Email}, orders.ShippingInfo{
		FullName:   req.FullName,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.Zip,
	}, method)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartCount, user.ID)).Err()
	}

	if res.Status == orders.StatusAwaitingPaymentCapture {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "proceed to payment capture",
			"status":      res.Status,
			"orderId":     res.OrderID,
			"totalAmount": res.Total,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Checkout arrives either as the legacy form post or as JSON.
func parseCheckoutReq(r *http.Request) (checkoutReq, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req checkoutReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return checkoutReq{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return checkoutReq{}, err
	}
	return checkoutReq{
		FullName:      r.PostFormValue("fullName"),
		Address:       r.PostFormValue("address"),
		City:          r.PostFormValue("city"),
		Zip:           r.PostFormValue("zip"),
		PaymentMethod: r.PostFormValue("paymentMethod"),
	}, nil
}
