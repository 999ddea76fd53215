package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/reqmeta"
)

const secret = "0123456789abcdef0123456789abcdef"

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := auth.PrincipalFrom(r.Context()); p != nil {
			_, _ = w.Write([]byte(p.UserID))
		}
	})
}

func TestAuthenticateReadsCookieAndBearer(t *testing.T) {
	sessions := auth.NewSessionManager(secret, time.Hour)
	token, err := sessions.Issue(auth.Principal{UserID: "u1", Role: "user"})
	require.NoError(t, err)
	h := NewAuthenticator(sessions).Authenticate(echoPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequireUserAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name      string
		principal *auth.Principal
		mw        func(http.Handler) http.Handler
		want      int
	}{
		{"anonymous user route", nil, RequireUser, http.StatusUnauthorized},
		{"user route", &auth.Principal{UserID: "u1", Role: "user"}, RequireUser, http.StatusNoContent},
		{"anonymous admin route", nil, RequireAdmin, http.StatusUnauthorized},
		{"user on admin route", &auth.Principal{UserID: "u1", Role: "user"}, RequireAdmin, http.StatusForbidden},
		{"admin route", &auth.Principal{UserID: "a1", Role: "admin"}, RequireAdmin, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.principal != nil {
				req = req.WithContext(auth.WithPrincipal(req.Context(), tc.principal))
			}
			rec := httptest.NewRecorder()
			tc.mw(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAttachRequestMetadata(t *testing.T) {
	var gotID, gotKey string
	h := middleware.RequestID(AttachRequestMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID = reqmeta.RequestID(r.Context())
		gotKey = reqmeta.IdempotencyKey(r.Context())
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Request-Id", "req-1")
	req.Header.Set(reqmeta.HeaderXIdempotencyKey, "idem-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", gotID)
	assert.Equal(t, "idem-1", gotKey)
	assert.Equal(t, "req-1", rec.Header().Get(reqmeta.HeaderXRequestID))
}
