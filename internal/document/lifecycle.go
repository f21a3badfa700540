package document

import (
	"github.com/meridian-crm/meridian/internal/shared"
)

// Per-kind lifecycle machines. Proposals end at Accepted/Rejected;
// re-opening means creating a new document, never un-terminating the old
// one. Paid invoices and cancelled credit notes are likewise terminal.
var machines = map[Kind]*shared.StateMachine{
	KindProposal: shared.NewStateMachine("proposal", map[string][]string{
		string(StatusDraft):    {string(StatusSent)},
		string(StatusSent):     {string(StatusAccepted), string(StatusRejected)},
		string(StatusAccepted): nil,
		string(StatusRejected): nil,
	}),
	KindCreditNote: shared.NewStateMachine("credit note", map[string][]string{
		string(StatusDraft):     {string(StatusIssued)},
		string(StatusIssued):    {string(StatusCancelled)},
		string(StatusCancelled): nil,
	}),
	KindInvoice: shared.NewStateMachine("invoice", map[string][]string{
		string(StatusDraft):         {string(StatusUnpaid)},
		string(StatusUnpaid):        {string(StatusPartiallypaid), string(StatusPaid), string(StatusOverdue)},
		string(StatusPartiallypaid): {string(StatusPaid), string(StatusOverdue)},
		string(StatusOverdue):       {string(StatusPartiallypaid), string(StatusPaid)},
		string(StatusPaid):          nil,
	}),
}

// Machine returns the lifecycle machine for a kind.
func Machine(kind Kind) *shared.StateMachine {
	return machines[kind]
}

// ValidateTransition checks the status move for the document, including the
// guards on leaving Draft: at least one line item and a non-negative total.
// It never mutates the document.
func ValidateTransition(d Document, to Status) error {
	m := machines[d.Kind]
	if m == nil {
		return &shared.InvalidStateError{Entity: string(d.Kind), From: string(d.Status), To: string(to), Reason: "unknown document kind"}
	}
	if err := m.Transition(string(d.Status), string(to)); err != nil {
		return err
	}
	if d.Status == StatusDraft {
		if len(d.Items) == 0 {
			return &shared.InvalidStateError{
				Entity: string(d.Kind), From: string(d.Status), To: string(to),
				Reason: "document has no line items",
			}
		}
		if d.Total.IsNegative() {
			return &shared.InvalidStateError{
				Entity: string(d.Kind), From: string(d.Status), To: string(to),
				Reason: "total is negative",
			}
		}
	}
	if d.Kind == KindInvoice {
		if err := validateInvoicePaymentState(d, to); err != nil {
			return err
		}
	}
	return nil
}

// validateInvoicePaymentState enforces the paid-amount invariants:
// Partiallypaid requires 0 < paid < total, Paid requires paid >= total
// (unless nothing was ever recorded, in which case Paid settles in full).
func validateInvoicePaymentState(d Document, to Status) error {
	switch to {
	case StatusPartiallypaid:
		if !d.PaidAmount.IsPositive() || d.PaidAmount.GreaterThanOrEqual(d.Total) {
			return &shared.InvalidStateError{
				Entity: string(d.Kind), From: string(d.Status), To: string(to),
				Reason: "partial payment requires 0 < paid amount < total",
			}
		}
	case StatusPaid:
		if d.PaidAmount.IsPositive() && d.PaidAmount.LessThan(d.Total) {
			return &shared.InvalidStateError{
				Entity: string(d.Kind), From: string(d.Status), To: string(to),
				Reason: "paid amount is below total",
			}
		}
	}
	return nil
}

// IsTerminal reports whether the document's current status accepts no
// further transitions.
func IsTerminal(d Document) bool {
	m := machines[d.Kind]
	return m != nil && m.IsTerminal(string(d.Status))
}
