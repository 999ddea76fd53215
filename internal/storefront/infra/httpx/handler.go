package httpx

import (
	"context"
	"net/http"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators of Handler. Media and Checks may be nil.
type Deps struct {
	Catalog      *services.CatalogService
	Checkout     *services.CheckoutService
	Payments     *services.PaymentService
	Accounts     *services.AccountService
	Orders       *services.OrderQuery
	Media        *services.MediaService
	Verifier     ports.WebhookVerifier
	Sessions     *auth.SessionManager
	Carts        cart.Store
	SecureCookie bool
	Checks       map[string]HealthCheck
}

// Handler serves the storefront HTTP API.
type Handler struct {
	catalog      *services.CatalogService
	checkout     *services.CheckoutService
	payments     *services.PaymentService
	accounts     *services.AccountService
	orders       *services.OrderQuery
	media        *services.MediaService
	verifier     ports.WebhookVerifier
	sessions     *auth.SessionManager
	carts        cart.Store
	secureCookie bool
	checks       map[string]HealthCheck
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		catalog:      d.Catalog,
		checkout:     d.Checkout,
		payments:     d.Payments,
		accounts:     d.Accounts,
		orders:       d.Orders,
		media:        d.Media,
		verifier:     d.Verifier,
		sessions:     d.Sessions,
		carts:        d.Carts,
		secureCookie: d.SecureCookie,
		checks:       d.Checks,
	}
}

// Health runs every registered check and reports 503 if any fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := map[string]string{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": results})
}
