package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/meridian-crm/meridian/internal/jobs"
	"github.com/meridian-crm/meridian/internal/payments"
)

// Reconciler runs a ledger reconciliation for one tenant.
type Reconciler interface {
	Reconcile(ctx context.Context, ownerID int64) (payments.ReconcileReport, error)
}

// OwnerLister enumerates tenants with documents.
type OwnerLister interface {
	OwnerIDs(ctx context.Context) ([]int64, error)
}

// ReconcileHandler processes TaskLedgerReconcile tasks.
type ReconcileHandler struct {
	ledger  Reconciler
	owners  OwnerLister
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewReconcileHandler builds the handler.
func NewReconcileHandler(ledger Reconciler, owners OwnerLister, metrics *jobmetrics.Metrics, logger *slog.Logger) *ReconcileHandler {
	return &ReconcileHandler{ledger: ledger, owners: owners, metrics: metrics, logger: logger}
}

// Handle reconciles the ledger for one tenant, or every tenant when the
// payload names none. Tenants reconcile concurrently with a bounded fan-out;
// mismatches are logged and counted, never corrected.
func (h *ReconcileHandler) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("ledger_reconcile")

	var payload LedgerReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	owners := []int64{payload.OwnerID}
	if payload.OwnerID == 0 {
		var err error
		owners, err = h.owners.OwnerIDs(ctx)
		if err != nil {
			return tracker.End(err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, ownerID := range owners {
		g.Go(func() error {
			report, err := h.ledger.Reconcile(gctx, ownerID)
			if err != nil {
				return err
			}
			h.metrics.AddMismatches(ownerID, len(report.Mismatches))
			for _, m := range report.Mismatches {
				h.logger.Warn("ledger mismatch",
					slog.Int64("owner_id", ownerID),
					slog.Int64("invoice_id", m.InvoiceID),
					slog.String("detail", m.Detail))
			}
			return nil
		})
	}
	return tracker.End(g.Wait())
}
