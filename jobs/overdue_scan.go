package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-crm/meridian/internal/jobs"
)

// OverdueMarker is the slice of the document service the scan needs.
type OverdueMarker interface {
	MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error)
}

// OverdueScanHandler processes TaskOverdueScan tasks.
type OverdueScanHandler struct {
	documents OverdueMarker
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
}

// NewOverdueScanHandler builds the handler.
func NewOverdueScanHandler(documents OverdueMarker, metrics *jobmetrics.Metrics, logger *slog.Logger) *OverdueScanHandler {
	return &OverdueScanHandler{documents: documents, metrics: metrics, logger: logger}
}

// Handle flips unpaid invoices past their due date to Overdue.
func (h *OverdueScanHandler) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("overdue_scan")

	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	moved, err := h.documents.MarkOverdueInvoices(ctx, asOf)
	if err != nil {
		return tracker.End(err)
	}
	h.metrics.AddOverdue(moved)
	if moved > 0 {
		h.logger.Info("overdue scan moved invoices", slog.Int("count", moved))
	}
	return tracker.End(nil)
}
