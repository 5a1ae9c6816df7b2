package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/catalog"
	"github.com/essentials-shop/storefront/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto status codes; anything
// unmapped is a persistence failure, logged and answered with a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var stockErr *orders.InsufficientStockError
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired),
		errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":     "insufficient stock",
			"productId": stockErr.ProductID,
		})
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrNoOpenOrder),
		errors.Is(err, orders.ErrUnsupportedPaymentMethod):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
	}
}
