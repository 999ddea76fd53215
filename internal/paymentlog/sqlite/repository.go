// Package sqlite provides a SQLite-backed implementation of paymentlog.Repository.
//
// WAL mode is enabled on Open so the webhook handler can append while an
// operator reads the log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/storefront/internal/paymentlog"

	// Pure-Go SQLite driver, no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS payment_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    -- Empty for webhooks rejected before an order was resolved.
    order_id    TEXT NOT NULL DEFAULT '',
    event       TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '{}',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_logs_order_id ON payment_logs(order_id, created_at);
CREATE INDEX IF NOT EXISTS idx_payment_logs_trace_id ON payment_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

var _ paymentlog.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/payments.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends an entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *paymentlog.Entry) error {
	const q = `
		INSERT INTO payment_logs (order_id, event, detail, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.OrderID,
		string(entry.Event),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.At),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save payment log for %q: %w", entry.OrderID, err)
	}
	return nil
}

// ListByOrder returns an order's entries oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]paymentlog.Entry, error) {
	const q = `
		SELECT order_id, event, detail, trace_id, span_id, created_at
		FROM   payment_logs
		WHERE  order_id = ?
		ORDER  BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list payment log for %q: %w", orderID, err)
	}
	defer rows.Close()

	var out []paymentlog.Entry
	for rows.Next() {
		var e paymentlog.Entry
		var at string
		if err := rows.Scan(&e.OrderID, &e.Event, &e.Detail, &e.TraceID, &e.SpanID, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scan payment log: %w", err)
		}
		if e.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate payment log: %w", err)
	}
	return out, nil
}
