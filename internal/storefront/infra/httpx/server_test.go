package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/paymentlog/sqlite"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/stripe"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

const (
	testSessionSecret = "0123456789abcdef0123456789abcdef"
	testWebhookSecret = "whsec_test_secret"
)

type stubGateway struct {
	calls int
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, req entity.CheckoutSessionRequest) (*entity.CheckoutSession, error) {
	g.calls++
	return &entity.CheckoutSession{ID: "cs_test_" + req.OrderID, URL: "https://checkout.example/" + req.OrderID}, nil
}

type stubImageHost struct{}

func (stubImageHost) Upload(_ context.Context, filename string, r io.Reader) (*ports.UploadedImage, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return &ports.UploadedImage{URL: "https://img.example/ecommerce/" + filename, PublicID: "ecommerce/" + filename}, nil
}

func (stubImageHost) Delete(context.Context, string) error { return nil }
func (stubImageHost) PublicID(string) string                { return "" }

type testServer struct {
	t        *testing.T
	handler  http.Handler
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	users    *memory.UserRepository
	auditLog *sqlite.Repository
	gateway  *stubGateway
	sessions *auth.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	auditLog, err := sqlite.Open(filepath.Join(t.TempDir(), "payments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditLog.Close() })

	s := &testServer{
		t: t,
		products: memory.NewProductRepository(
			entity.Product{ID: "p1", Name: "Desk Lamp", Description: "LED", Category: "home", Price: decimal.NewFromInt(100), Stock: 5, Images: []string{"https://img.example/lamp.jpg"}},
			entity.Product{ID: "p2", Name: "Coffee Mug", Description: "Ceramic", Category: "kitchen", Price: decimal.RequireFromString("12.50"), Stock: 1},
		),
		orders:   memory.NewOrderRepository(),
		users:    memory.NewUserRepository(),
		auditLog: auditLog,
		gateway:  &stubGateway{},
		sessions: auth.NewSessionManager(testSessionSecret, time.Hour),
	}

	v := validation.New()
	recorder := paymentlog.NewRecorder(auditLog)
	h := NewHandler(Deps{
		Catalog: services.NewCatalogService(s.products, stubImageHost{}, v),
		Checkout: services.NewCheckoutService(services.CheckoutDeps{
			Products:  s.products,
			Orders:    s.orders,
			Gateway:   s.gateway,
			Recorder:  recorder,
			Validator: v,
			Pricing:   entity.DefaultPricing(),
			BaseURL:   "http://shop.test",
		}),
		Payments: services.NewPaymentService(s.orders, s.products, nil, recorder),
		Accounts: services.NewAccountService(s.users, v),
		Orders:   services.NewOrderQuery(s.orders),
		Media:    services.NewMediaService(stubImageHost{}),
		Verifier: stripe.NewEventParser(testWebhookSecret),
		Sessions: s.sessions,
		Carts:    cart.NewMemoryStore(),
		Checks: map[string]HealthCheck{
			"memory": func(context.Context) error { return nil },
		},
	})
	s.handler = NewRouter(h, middlewares.NewAuthenticator(s.sessions))
	return s
}

// token issues a session for a principal without going through login.
func (s *testServer) token(userID, role string) string {
	s.t.Helper()
	tok, err := s.sessions.Issue(auth.Principal{UserID: userID, Name: userID, Email: userID + "@example.com", Role: role})
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) webhook(payload, signature string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader([]byte(payload)))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func signPayload(payload string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	}).Header
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) stock(id string) int {
	s.t.Helper()
	p, err := s.products.Get(context.Background(), id)
	require.NoError(s.t, err)
	return p.Stock
}

func checkoutBody(items ...CheckoutItemDTO) CheckoutRequest {
	return CheckoutRequest{
		Items: items,
		ShippingAddress: &services.AddressInput{
			Street: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		},
		PaymentMethod: "stripe",
	}
}
