package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/cart"
	"github.com/essentials-shop/storefront/internal/redisx"
)

type CartHandler struct {
	Cart  *cart.Service
	Redis *redis.Client
	Log   *zap.Logger
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/cart/add/{id}", h.mutate(h.Cart.AddItem))
	r.Post("/cart/increment/{id}", h.mutate(h.Cart.IncrementItem))
	r.Post("/cart/decrement/{id}", h.mutate(h.Cart.DecrementItem))
	r.Post("/cart/remove/{id}", h.mutate(h.Cart.RemoveItem))
	r.Get("/cart", h.getCart)
	r.Get("/cart/count", h.getCount)
}

func (h *CartHandler) mutate(op func(ctx context.Context, userID, productID string) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, h.Log, auth.ErrAuthenticationRequired)
			return
		}
		productID := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		count, err := op(ctx, user.ID, productID)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		h.invalidateCount(ctx, user.ID)
		writeJSON(w, http.StatusOK, map[string]int{"cartCount": count})
	}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, h.Log, auth.ErrAuthenticationRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	view, err := h.Cart.Cart(ctx, user.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getCount degrades to zero for anonymous sessions so the badge renders
// pre-login.
func (h *CartHandler) getCount(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]int{"cartCount": 0})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyCartCount, user.ID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil {
			if n, err := strconv.Atoi(s); err == nil {
				writeJSON(w, http.StatusOK, map[string]int{"cartCount": n})
				return
			}
		}
	}

	count, err := h.Cart.Count(ctx, user.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, strconv.Itoa(count), redisx.TTLCartCount).Err()
	}
	writeJSON(w, http.StatusOK, map[string]int{"cartCount": count})
}

func (h *CartHandler) invalidateCount(ctx context.Context, userID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartCount, userID)).Err()
}
