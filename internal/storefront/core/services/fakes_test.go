package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type fakeGateway struct {
	requests []entity.CheckoutSessionRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req entity.CheckoutSessionRequest) (*entity.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &entity.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type fakePublisher struct {
	events []entity.Event
}

func (p *fakePublisher) Publish(_ context.Context, evt entity.Event) error {
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memLog struct {
	mu      sync.Mutex
	entries []paymentlog.Entry
}

func (l *memLog) Save(_ context.Context, e *paymentlog.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *e)
	return nil
}

func (l *memLog) ListByOrder(_ context.Context, orderID string) ([]paymentlog.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []paymentlog.Entry
	for _, e := range l.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memLog) events() []paymentlog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]paymentlog.Event, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Event)
	}
	return out
}

type fakeImageHost struct {
	uploaded []string
	deleted  []string
	failOn   string
}

var _ ports.ImageHost = (*fakeImageHost)(nil)

func (h *fakeImageHost) Upload(_ context.Context, filename string, r io.Reader) (*ports.UploadedImage, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	if filename == h.failOn {
		return nil, errors.New("upstream rejected file")
	}
	h.uploaded = append(h.uploaded, filename)
	id := "ecommerce/" + strings.TrimSuffix(filename, path.Ext(filename))
	return &ports.UploadedImage{URL: "https://img.example/" + id + ".jpg", PublicID: id}, nil
}

func (h *fakeImageHost) Delete(_ context.Context, publicID string) error {
	if publicID == h.failOn {
		return errors.New("destroy failed")
	}
	h.deleted = append(h.deleted, publicID)
	return nil
}

func (h *fakeImageHost) PublicID(url string) string {
	const prefix = "https://img.example/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(url, prefix)
	return strings.TrimSuffix(rest, path.Ext(rest))
}
