package payments

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	payments map[string]*Payment
}

func newMockRepository() *mockRepository {
	return &mockRepository{payments: make(map[string]*Payment)}
}

func (m *mockRepository) Insert(ctx context.Context, p Payment) error {
	m.payments[p.ID.String()] = &p
	return nil
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepository) ListByInvoice(ctx context.Context, ownerID, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.OwnerID == ownerID && p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockInvoiceSource struct {
	views []InvoiceView
}

func (m *mockInvoiceSource) ListInvoiceViews(ctx context.Context, ownerID int64) ([]InvoiceView, error) {
	var out []InvoiceView
	for _, v := range m.views {
		if v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestService(views ...InvoiceView) (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, &mockInvoiceSource{views: views}, slog.Default()), repo
}

// ============================================================================
// TESTS
// ============================================================================

func TestStatsFromStore(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(1, KindFull), InvoiceID: 1, OwnerID: 5, Amount: dec("100"), Status: StatusCompleted}))
	require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(2, KindPartial), InvoiceID: 2, OwnerID: 5, Amount: dec("40"), Status: StatusCompleted}))
	require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(3, KindFull), InvoiceID: 3, OwnerID: 6, Amount: dec("999"), Status: StatusCompleted}))

	stats, err := svc.StatsFromStore(ctx, shared.Identity{ActorID: 5, OwnerID: 5, Role: shared.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total.Count)
	assert.True(t, stats.Total.TotalAmount.Equal(dec("140")), "total = %s", stats.Total.TotalAmount)
}

func TestReconcile(t *testing.T) {
	t.Run("ledger in agreement reports no mismatches", func(t *testing.T) {
		views := []InvoiceView{
			{ID: 1, OwnerID: 5, Status: "Paid", Total: dec("200"), PaidAmount: dec("200")},
			{ID: 2, OwnerID: 5, Status: "Partiallypaid", Total: dec("300"), PaidAmount: dec("120")},
		}
		svc, repo := newTestService(views...)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(1, KindFull), InvoiceID: 1, OwnerID: 5, Amount: dec("200"), Status: StatusCompleted}))
		require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(2, KindPartial), InvoiceID: 2, OwnerID: 5, Amount: dec("120"), Status: StatusCompleted}))

		report, err := svc.Reconcile(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Checked)
		assert.Empty(t, report.Mismatches)
	})

	t.Run("missing ledger row is reported", func(t *testing.T) {
		views := []InvoiceView{
			{ID: 1, OwnerID: 5, Status: "Paid", Total: dec("200"), PaidAmount: dec("200")},
		}
		svc, _ := newTestService(views...)

		report, err := svc.Reconcile(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, report.Mismatches, 1)
		assert.Equal(t, int64(1), report.Mismatches[0].InvoiceID)
	})

	t.Run("orphaned ledger rows are reported", func(t *testing.T) {
		// The invoice went back to Unpaid but its ledger rows survive.
		views := []InvoiceView{
			{ID: 3, OwnerID: 5, Status: "Unpaid", Total: dec("400")},
		}
		svc, repo := newTestService(views...)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(3, KindPartial), InvoiceID: 3, OwnerID: 5, Amount: dec("150"), Status: StatusCompleted}))

		report, err := svc.Reconcile(ctx, 5)
		require.NoError(t, err)
		require.Len(t, report.Mismatches, 1)
		assert.Equal(t, int64(3), report.Mismatches[0].InvoiceID)
		assert.Contains(t, report.Mismatches[0].Detail, "150")
		assert.Contains(t, report.Mismatches[0].Detail, "no paid amount")
	})

	t.Run("amount divergence is reported not corrected", func(t *testing.T) {
		views := []InvoiceView{
			{ID: 2, OwnerID: 5, Status: "Partiallypaid", Total: dec("300"), PaidAmount: dec("120")},
		}
		svc, repo := newTestService(views...)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, Payment{ID: DerivedID(2, KindPartial), InvoiceID: 2, OwnerID: 5, Amount: dec("90"), Status: StatusCompleted}))

		report, err := svc.Reconcile(ctx, 5)
		require.NoError(t, err)
		require.Len(t, report.Mismatches, 1)
		assert.Contains(t, report.Mismatches[0].Detail, "90")
		assert.Contains(t, report.Mismatches[0].Detail, "120")

		// Stored row stays untouched.
		stored, err := repo.ListByInvoice(ctx, 5, 2)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, stored[0].Amount.Equal(dec("90")))
	})
}
