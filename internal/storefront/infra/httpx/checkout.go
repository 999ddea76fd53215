package httpx

import (
	"net/http"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
)

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]services.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		id := it.ProductID
		if id == "" {
			id = it.ID
		}
		items = append(items, services.CheckoutItem{ProductID: id, Quantity: it.Quantity})
	}

	res, err := h.checkout.CreateOrder(r.Context(), auth.PrincipalFrom(r.Context()), services.CheckoutInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{
		SessionID: res.SessionID,
		OrderID:   res.OrderID,
		URL:       res.URL,
	})
}
