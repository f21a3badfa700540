// Package document implements sales documents: proposals, credit notes and
// invoices composed of line items with a single document-level discount.
package document

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the document variants.
type Kind string

const (
	KindProposal   Kind = "proposal"
	KindCreditNote Kind = "credit_note"
	KindInvoice    Kind = "invoice"
)

// Status enumerates lifecycle states across all kinds; each kind uses its
// own subset (see lifecycle.go).
type Status string

const (
	StatusDraft         Status = "Draft"
	StatusSent          Status = "Sent"
	StatusAccepted      Status = "Accepted"
	StatusRejected      Status = "Rejected"
	StatusIssued        Status = "Issued"
	StatusCancelled     Status = "Cancelled"
	StatusUnpaid        Status = "Unpaid"
	StatusPartiallypaid Status = "Partiallypaid"
	StatusPaid          Status = "Paid"
	StatusOverdue       Status = "Overdue"
)

// DiscountType selects how the document discount is applied.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// LineItem is one row of a document. Amount is always quantity x rate,
// recomputed on every quantity or rate change. The tax rates are carried per
// line; whether they affect the total is decided by the calculator options.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Tax1Rate    decimal.Decimal `json:"tax1_rate"`
	Tax2Rate    decimal.Decimal `json:"tax2_rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Document generalises Proposal, Credit Note and Invoice. Subtotal, Discount
// and Total are derived and recomputed on every mutation; stored values are
// never trusted from client input.
type Document struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Kind          Kind            `json:"kind"`
	OwnerID       int64           `json:"owner_id"`
	CustomerID    int64           `json:"customer_id"`
	Items         []LineItem      `json:"items"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Currency      string          `json:"currency"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Status        Status          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	CreatedBy     int64           `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecordOwner implements rbac.Record.
func (d Document) RecordOwner() int64 { return d.OwnerID }

// IsDraft reports whether financial fields may still be mutated freely.
func (d Document) IsDraft() bool { return d.Status == StatusDraft }
