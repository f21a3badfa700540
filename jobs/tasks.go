// Package jobs contains the background task definitions and the Asynq worker
// that runs them: the overdue invoice scan and the ledger reconciliation.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan flips past-due invoices to Overdue.
	TaskOverdueScan = "invoices:overdue_scan"
	// TaskLedgerReconcile compares the payment ledger against invoice state.
	TaskLedgerReconcile = "ledger:reconcile"
)

// OverdueScanPayload carries the evaluation date for the scan. A zero AsOf
// means "now" at execution time.
type OverdueScanPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewOverdueScanTask constructs the overdue scan task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// LedgerReconcilePayload optionally narrows reconciliation to one tenant.
// OwnerID zero reconciles every tenant.
type LedgerReconcilePayload struct {
	OwnerID int64 `json:"owner_id,omitempty"`
}

// NewLedgerReconcileTask constructs the reconciliation task.
func NewLedgerReconcileTask(payload LedgerReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, data), nil
}
