// Package payments is the payment ledger: persisted payment records written
// when invoices change status, plus derivation and reconciliation against
// invoice paid-amounts.
package payments

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates payment record states.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusFailed    Status = "Failed"
	StatusRefunded  Status = "Refunded"
)

// Kind distinguishes a full settlement from a partial one. It is part of the
// derived-ID input so repeated derivation stays idempotent.
type Kind string

const (
	KindFull    Kind = "full"
	KindPartial Kind = "partial"
)

// Payment is one ledger row against an invoice.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	OwnerID       int64           `json:"owner_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentDate   time.Time       `json:"payment_date"`
	Mode          string          `json:"payment_mode,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordOwner implements rbac.Record.
func (p Payment) RecordOwner() int64 { return p.OwnerID }

// ledgerNamespace seeds derived payment IDs. Fixed so that deriving twice
// from the same invoice yields the same ID, never a duplicate row.
var ledgerNamespace = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

// DerivedID returns the deterministic ID for a payment derived from an
// invoice. It is a pure function of the invoice ID and the payment kind.
func DerivedID(invoiceID int64, kind Kind) uuid.UUID {
	return uuid.NewSHA1(ledgerNamespace, []byte(string(kind)+":"+strconv.FormatInt(invoiceID, 10)))
}
