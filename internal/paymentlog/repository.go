package paymentlog

import (
	"context"
	"log/slog"
)

// Repository persists log entries. The table is append-only.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	ListByOrder(ctx context.Context, orderID string) ([]Entry, error)
}

// Recorder writes entries best-effort: failures are logged, never returned,
// so the audit trail can't break a checkout. A nil Recorder or one with a
// nil repository is a no-op.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends an entry built from ctx.
func (r *Recorder) Record(ctx context.Context, orderID string, event Event, detail map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	entry := NewEntry(ctx, orderID, event, detail)
	if err := r.repo.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "payment log write failed", "order_id", orderID, "event", event, "error", err)
	}
}
