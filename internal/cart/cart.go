// Package cart manages a shopping cart: an ordered list of product entries
// persisted through a Store after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// Item is one cart entry. ID is the product reference; Name, Price and Image
// are snapshots taken when the item was first added.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// Notification is a transient user-facing message about a cart change.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier receives cart notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Collector is a Notifier that keeps notifications in memory, in order.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Notifications returns what has been collected so far.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// Manager owns the items of one cart. Operations never fail: persistence is
// best-effort and errors are logged.
type Manager struct {
	mu       sync.Mutex
	key      string
	store    Store
	notifier Notifier
	items    []Item
	onChange func(op string)
}

type Option func(*Manager)

// WithNotifier routes notifications to n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithChangeHook calls fn with the operation name after every mutation.
func WithChangeHook(fn func(op string)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// Open loads the cart stored under key. A missing or malformed stored value
// yields an empty cart; malformed values are logged and not partially
// recovered.
func Open(ctx context.Context, store Store, key string, opts ...Option) *Manager {
	m := &Manager{key: key, store: store}
	for _, opt := range opts {
		opt(m)
	}

	raw, ok, err := store.Load(ctx, key)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "cart: load failed", "key", key, "error", err)
	case ok:
		var items []Item
		if err := json.Unmarshal(raw, &items); err != nil {
			slog.ErrorContext(ctx, "cart: malformed stored cart", "key", key, "error", err)
		} else {
			m.items = items
		}
	}
	return m
}

// Key is the storage key of this cart.
func (m *Manager) Key() string { return m.key }

// Add appends item, or sums its quantity into the existing entry with the
// same ID. The existing entry's name, price and image are kept.
func (m *Manager) Add(ctx context.Context, item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	m.mu.Lock()
	var n Notification
	if i := m.indexOf(item.ID); i >= 0 {
		m.items[i].Quantity += item.Quantity
		n = Notification{Title: "Product updated", Description: fmt.Sprintf("%s quantity updated in the cart", item.Name)}
	} else {
		m.items = append(m.items, item)
		n = Notification{Title: "Product added", Description: fmt.Sprintf("%s added to the cart", item.Name)}
	}
	m.persistLocked(ctx)
	m.mu.Unlock()

	m.notify(ctx, n)
	m.changed("add")
}

// UpdateQuantity sets the quantity of the entry with id. Quantities below 1
// are ignored; use Remove to delete an entry.
func (m *Manager) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity < 1 {
		return
	}

	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.items[i].Quantity = quantity
	m.persistLocked(ctx)
	m.mu.Unlock()

	m.changed("update")
}

// Remove deletes the entry with id. It notifies only if an entry existed.
func (m *Manager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	removed := m.items[i]
	m.items = append(m.items[:i:i], m.items[i+1:]...)
	m.persistLocked(ctx)
	m.mu.Unlock()

	m.notify(ctx, Notification{Title: "Product removed", Description: fmt.Sprintf("%s removed from the cart", removed.Name)})
	m.changed("remove")
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.items = nil
	m.persistLocked(ctx)
	m.mu.Unlock()

	m.notify(ctx, Notification{Title: "Cart cleared", Description: "All products have been removed from the cart"})
	m.changed("clear")
}

// Items returns a copy of the entries in insertion order.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...)
}

// Subtotal is the sum of price x quantity over all entries, computed on
// every call.
func (m *Manager) Subtotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, it := range m.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Count is the total number of units in the cart.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.items {
		n += it.Quantity
	}
	return n
}

func (m *Manager) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) persistLocked(ctx context.Context) {
	items := m.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		slog.ErrorContext(ctx, "cart: encode failed", "key", m.key, "error", err)
		return
	}
	if err := m.store.Save(ctx, m.key, raw); err != nil {
		slog.WarnContext(ctx, "cart: save failed", "key", m.key, "error", err)
	}
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	if m.notifier != nil {
		m.notifier.Notify(ctx, n)
	}
}

func (m *Manager) changed(op string) {
	if m.onChange != nil {
		m.onChange(op)
	}
}
