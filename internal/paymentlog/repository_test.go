package paymentlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingRepo struct{ calls int }

func (f *failingRepo) Save(context.Context, *Entry) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingRepo) ListByOrder(context.Context, string) ([]Entry, error) { return nil, nil }

func TestRecorderSwallowsErrorsAndNil(t *testing.T) {
	repo := &failingRepo{}
	NewRecorder(repo).Record(context.Background(), "o1", EventOrderCreated, nil)
	assert.Equal(t, 1, repo.calls)

	var nilRec *Recorder
	assert.NotPanics(t, func() { nilRec.Record(context.Background(), "o1", EventOrderCreated, nil) })
	assert.NotPanics(t, func() { NewRecorder(nil).Record(context.Background(), "o1", EventOrderCreated, nil) })
}

func TestNewEntryWithoutSpan(t *testing.T) {
	e := NewEntry(context.Background(), "o1", EventSessionFailed, map[string]any{"error": "boom"})
	assert.Equal(t, "o1", e.OrderID)
	assert.JSONEq(t, `{"error":"boom"}`, e.Detail)
	assert.Empty(t, e.TraceID)
	assert.False(t, e.At.IsZero())
}
