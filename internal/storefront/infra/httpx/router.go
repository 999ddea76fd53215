package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, authn *middlewares.Authenticator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	r.Route("/api", func(r chi.Router) {
		// The webhook authenticates by signature and must see the raw body.
		r.Post("/webhook", handler.StripeWebhook)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			r.Get("/products", handler.ListProducts)
			r.Get("/products/{id}", handler.GetProduct)

			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
			r.Post("/logout", handler.Logout)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", handler.GetCart)
				r.Delete("/", handler.ClearCart)
				r.Post("/items", handler.AddCartItem)
				r.Patch("/items/{id}", handler.UpdateCartItem)
				r.Delete("/items/{id}", handler.RemoveCartItem)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireUser)
				r.Get("/me", handler.Me)
				r.Post("/checkout", handler.Checkout)
				r.Get("/orders", handler.ListOrders)
				r.Get("/orders/{id}", handler.GetOrder)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireAdmin)
				r.Post("/products", handler.CreateProduct)
				r.Put("/products/{id}", handler.UpdateProduct)
				r.Delete("/products/{id}", handler.DeleteProduct)
				r.Post("/upload", handler.Upload)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
