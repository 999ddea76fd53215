package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/metrics"
)

const webhookBodyLimit = 1024 * 1024 // 1 MiB

type webhookReceivedResponse struct {
	Received bool `json:"received"`
}

// StripeWebhook verifies the Stripe-Signature header and applies the event.
// Nothing is mutated unless verification succeeds.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		status = http.StatusBadRequest
		writeMessage(w, status, "failed to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(signature) == "" {
		status = http.StatusBadRequest
		writeMessage(w, status, "No stripe signature found")
		return
	}

	event, err := h.verifier.ParseEvent(payload, signature)
	if err != nil {
		slog.WarnContext(r.Context(), "webhook rejected", "error", err)
		h.payments.RecordRejected(r.Context(), err.Error())
		status = http.StatusBadRequest
		writeMessage(w, status, "Webhook error: "+err.Error())
		return
	}
	eventType = event.Type

	if err := h.payments.HandleEvent(r.Context(), event); err != nil {
		status = writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookReceivedResponse{Received: true})
}
