package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/notify"
)

// ContactHandler forwards contact-form submissions to the shop inbox. The
// route is public; the visitor ends up on Reply-To.
type ContactHandler struct {
	Inbox  string
	Sender notify.EmailSender
	Log    *zap.Logger
}

func (h *ContactHandler) Register(r *chi.Mux) {
	r.Post("/contact", h.postContact)
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandler) postContact(w http.ResponseWriter, r *http.Request) {
	req, err := parseContactReq(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	msg := notify.BuildContactMessage(h.Inbox, req.Name, req.Email, req.Message)
	if err := h.Sender.Send(ctx, msg); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "message sent"})
}

func parseContactReq(r *http.Request) (contactReq, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req contactReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return contactReq{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return contactReq{}, err
	}
	return contactReq{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}, nil
}
