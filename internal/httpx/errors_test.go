package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/catalog"
	"github.com/essentials-shop/storefront/internal/orders"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrAuthenticationRequired, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{catalog.ErrProductNotFound, http.StatusNotFound},
		{catalog.ErrCategoryNotFound, http.StatusNotFound},
		{orders.ErrEmptyCart, http.StatusBadRequest},
		// the loser of a concurrent checkout surfaces this one
		{orders.ErrNoOpenOrder, http.StatusBadRequest},
		{orders.ErrUnsupportedPaymentMethod, http.StatusBadRequest},
		{&orders.InsufficientStockError{ProductID: "p1"}, http.StatusBadRequest},
		{auth.ErrEmailTaken, http.StatusConflict},
		{errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, zap.NewNop(), c.err)
		if rec.Code != c.want {
			t.Errorf("writeError(%v) = %d, want %d", c.err, rec.Code, c.want)
		}
	}
}
