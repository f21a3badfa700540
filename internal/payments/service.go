package payments

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository defines ledger persistence. Inserts are normally issued by the
// document package inside the same transaction as the invoice status change;
// the standalone Insert exists for imports and manual corrections.
type Repository interface {
	Insert(ctx context.Context, p Payment) error
	ListByOwner(ctx context.Context, ownerID int64) ([]Payment, error)
	ListByInvoice(ctx context.Context, ownerID, invoiceID int64) ([]Payment, error)
}

// InvoiceSource supplies invoice views for reconciliation. The document
// package provides the production implementation.
type InvoiceSource interface {
	ListInvoiceViews(ctx context.Context, ownerID int64) ([]InvoiceView, error)
}

// Service handles ledger business logic.
type Service struct {
	repo     Repository
	invoices InvoiceSource
	logger   *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, invoices InvoiceSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, invoices: invoices, logger: logger}
}

// List returns the caller's ledger. Clients see their own owner's payments
// through the portal; staff see the tenant ledger.
func (s *Service) List(ctx context.Context, id shared.Identity) ([]Payment, error) {
	return s.repo.ListByOwner(ctx, id.OwnerID)
}

// ListByInvoice returns the payments recorded against one invoice.
func (s *Service) ListByInvoice(ctx context.Context, id shared.Identity, invoiceID int64) ([]Payment, error) {
	return s.repo.ListByInvoice(ctx, id.OwnerID, invoiceID)
}

// StatsFromStore aggregates persisted payments. Statistics always come from
// the store, never from re-derivation.
func (s *Service) StatsFromStore(ctx context.Context, id shared.Identity) (Stats, error) {
	ps, err := s.repo.ListByOwner(ctx, id.OwnerID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(ps), nil
}

// Mismatch is one divergence found by Reconcile.
type Mismatch struct {
	InvoiceID int64  `json:"invoice_id"`
	Detail    string `json:"detail"`
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Reconcile compares the persisted ledger against payments derived from
// invoice state. Divergent invoices are reported, never silently corrected.
func (s *Service) Reconcile(ctx context.Context, ownerID int64) (ReconcileReport, error) {
	var (
		views     []InvoiceView
		persisted []Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		views, err = s.invoices.ListInvoiceViews(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		persisted, err = s.repo.ListByOwner(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReconcileReport{}, fmt.Errorf("payments: reconcile load: %w", err)
	}

	settled := make(map[int64]Stats)
	byInvoice := make(map[int64][]Payment)
	for _, p := range persisted {
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], p)
	}
	for id, ps := range byInvoice {
		settled[id] = ComputeStats(ps)
	}

	report := ReconcileReport{}
	derivedSet := make(map[int64]bool)
	for _, derived := range DeriveFromInvoices(views) {
		derivedSet[derived.InvoiceID] = true
		report.Checked++
		stored, ok := settled[derived.InvoiceID]
		if !ok {
			report.Mismatches = append(report.Mismatches, Mismatch{
				InvoiceID: derived.InvoiceID,
				Detail:    "invoice carries a paid amount but the ledger has no payment",
			})
			continue
		}
		if !stored.Total.TotalAmount.Equal(derived.Amount) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				InvoiceID: derived.InvoiceID,
				Detail: fmt.Sprintf("ledger total %s does not match invoice paid amount %s",
					stored.Total.TotalAmount.String(), derived.Amount.String()),
			})
		}
	}
	// The reverse direction: persisted rows against invoices that no longer
	// record any paid amount are just as divergent as a missing row.
	for invoiceID, stored := range settled {
		if derivedSet[invoiceID] || !stored.Total.TotalAmount.IsPositive() {
			continue
		}
		report.Checked++
		report.Mismatches = append(report.Mismatches, Mismatch{
			InvoiceID: invoiceID,
			Detail: fmt.Sprintf("ledger holds %s but the invoice records no paid amount",
				stored.Total.TotalAmount.String()),
		})
	}
	if len(report.Mismatches) > 0 {
		s.logger.Warn("ledger reconciliation found mismatches",
			slog.Int64("owner_id", ownerID),
			slog.Int("mismatches", len(report.Mismatches)))
	}
	return report, nil
}
