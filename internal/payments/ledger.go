package payments

import (
	"github.com/shopspring/decimal"
)

// InvoiceView is the slice of an invoice the ledger needs. The document
// package fills it; payments never reads documents directly.
type InvoiceView struct {
	ID         int64
	OwnerID    int64
	Status     string
	Currency   string
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
}

// DeriveFromInvoices synthesizes payment records from invoice state. Paid
// invoices yield one full payment of paidAmount, falling back to the total
// when no paid amount was recorded. Partially paid invoices with a positive
// paid amount yield one partial payment. Every other status yields nothing.
// IDs are deterministic, so deriving twice from the same invoices is
// idempotent.
func DeriveFromInvoices(invoices []InvoiceView) []Payment {
	var out []Payment
	for _, inv := range invoices {
		switch inv.Status {
		case "Paid":
			amount := inv.PaidAmount
			if !amount.IsPositive() {
				amount = inv.Total
			}
			out = append(out, Payment{
				ID:        DerivedID(inv.ID, KindFull),
				InvoiceID: inv.ID,
				OwnerID:   inv.OwnerID,
				Amount:    amount,
				Currency:  inv.Currency,
				Status:    StatusCompleted,
			})
		case "Partiallypaid":
			if !inv.PaidAmount.IsPositive() {
				continue
			}
			out = append(out, Payment{
				ID:        DerivedID(inv.ID, KindPartial),
				InvoiceID: inv.ID,
				OwnerID:   inv.OwnerID,
				Amount:    inv.PaidAmount,
				Currency:  inv.Currency,
				Status:    StatusCompleted,
			})
		}
	}
	return out
}

// StatsTotal is the overall slice of Stats.
type StatsTotal struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Stats aggregates a payment set into a count, a summed amount and a
// per-status breakdown.
type Stats struct {
	Total    StatsTotal     `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

// ComputeStats folds payments into Stats. Only completed payments sum into
// the total amount; pending, refunded and failed rows count in the breakdown
// alone, so the total stays comparable against invoice paid amounts.
func ComputeStats(ps []Payment) Stats {
	stats := Stats{Total: StatsTotal{TotalAmount: decimal.Zero}, ByStatus: make(map[Status]int)}
	for _, p := range ps {
		stats.Total.Count++
		stats.ByStatus[p.Status]++
		if p.Status == StatusCompleted {
			stats.Total.TotalAmount = stats.Total.TotalAmount.Add(p.Amount)
		}
	}
	return stats
}
