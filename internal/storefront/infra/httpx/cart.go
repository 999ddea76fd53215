package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
)

const (
	cartCookie    = "cart_id"
	// Browsers cap cookie lifetimes at 400 days; the cookie is reissued on
	// every cart request so an active cart never loses its key.
	cartCookieAge = 400 * 24 * time.Hour
)

// openCart loads the caller's cart, issuing a cart cookie on first use.
func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) (*cart.Manager, *cart.Collector) {
	key := ""
	if c, err := r.Cookie(cartCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			key = c.Value
		}
	}
	if key == "" {
		key = uuid.NewString()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    key,
		Path:     "/",
		MaxAge:   int(cartCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	notes := &cart.Collector{}
	m := cart.Open(r.Context(), h.carts, key,
		cart.WithNotifier(notes),
		cart.WithChangeHook(func(op string) {
			metrics.CartMutationsTotal.WithLabelValues(op).Inc()
		}),
	)
	return m, notes
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	m, _ := h.openCart(w, r)
	writeJSON(w, http.StatusOK, mapCart(m, nil))
}

// AddCartItem snapshots name, price and image from the catalog.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := req.ProductID
	if id == "" {
		id = req.ID
	}
	if id == "" {
		writeError(w, r, apperr.Invalid("validation failed", apperr.FieldError{Field: "productId", Message: "is required"}))
		return
	}
	if req.Quantity < 1 {
		writeError(w, r, apperr.Invalid("validation failed", apperr.FieldError{Field: "quantity", Message: "must be at least 1"}))
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, notes := h.openCart(w, r)
	m.Add(r.Context(), cart.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: req.Quantity,
		Image:    p.FirstImage(),
	})
	writeJSON(w, http.StatusOK, mapCart(m, notes.Notifications()))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, notes := h.openCart(w, r)
	m.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	writeJSON(w, http.StatusOK, mapCart(m, notes.Notifications()))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	m, notes := h.openCart(w, r)
	m.Remove(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, mapCart(m, notes.Notifications()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	m, notes := h.openCart(w, r)
	m.Clear(r.Context())
	writeJSON(w, http.StatusOK, mapCart(m, notes.Notifications()))
}
