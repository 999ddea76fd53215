package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront/internal/pkg/reqmeta"
)

// AttachRequestMetadata copies the chi request ID and the client idempotency
// key into the context so loggers and publishers can read them, and echoes
// the request ID back to the client.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(reqmeta.HeaderXIdempotencyKey)

		ctx := reqmeta.WithRequestID(r.Context(), requestID)
		if idempotencyKey != "" {
			ctx = reqmeta.WithIdempotencyKey(ctx, idempotencyKey)
		}
		if requestID != "" {
			w.Header().Set(reqmeta.HeaderXRequestID, requestID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
