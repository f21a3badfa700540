package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

func draftInvoice(t *testing.T) Document {
	t.Helper()
	doc := Document{
		Kind:     KindInvoice,
		Status:   StatusDraft,
		Currency: "USD",
		Items:    []LineItem{mustLine(t, "a", 1, "10", "0", "0")},
	}
	return Recompute(doc, CalcOptions{})
}

func TestValidateTransition(t *testing.T) {
	t.Run("empty draft cannot leave Draft", func(t *testing.T) {
		doc := Document{Kind: KindProposal, Status: StatusDraft, Currency: "USD"}
		doc = Recompute(doc, CalcOptions{})
		err := ValidateTransition(doc, StatusSent)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidState(err))
		assert.Contains(t, err.Error(), "no line items")
	})

	t.Run("draft with one line can leave Draft", func(t *testing.T) {
		doc := Document{Kind: KindProposal, Status: StatusDraft, Currency: "USD",
			Items: []LineItem{mustLine(t, "a", 1, "10", "0", "0")}}
		doc = Recompute(doc, CalcOptions{})
		assert.NoError(t, ValidateTransition(doc, StatusSent))
	})

	t.Run("accepted proposal is terminal", func(t *testing.T) {
		doc := Document{Kind: KindProposal, Status: StatusAccepted}
		err := ValidateTransition(doc, StatusSent)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidState(err))
		assert.Contains(t, err.Error(), "terminal")
		assert.True(t, IsTerminal(doc))
	})

	t.Run("rejected proposal is terminal", func(t *testing.T) {
		doc := Document{Kind: KindProposal, Status: StatusRejected}
		assert.True(t, IsTerminal(doc))
		assert.Error(t, ValidateTransition(doc, StatusDraft))
	})

	t.Run("credit note flows Draft Issued Cancelled", func(t *testing.T) {
		doc := Document{Kind: KindCreditNote, Status: StatusDraft, Currency: "USD",
			Items: []LineItem{mustLine(t, "a", 1, "10", "0", "0")}}
		doc = Recompute(doc, CalcOptions{})
		require.NoError(t, ValidateTransition(doc, StatusIssued))
		doc.Status = StatusIssued
		require.NoError(t, ValidateTransition(doc, StatusCancelled))
		doc.Status = StatusCancelled
		assert.True(t, IsTerminal(doc))
	})

	t.Run("invoice cannot skip to Paid from Draft", func(t *testing.T) {
		doc := draftInvoice(t)
		err := ValidateTransition(doc, StatusPaid)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidState(err))
	})

	t.Run("error names attempted and current state", func(t *testing.T) {
		doc := Document{Kind: KindInvoice, Status: StatusPaid}
		err := ValidateTransition(doc, StatusUnpaid)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Paid")
		assert.Contains(t, err.Error(), "Unpaid")
	})
}

func TestInvoicePaymentStateGuards(t *testing.T) {
	t.Run("Partiallypaid requires paid between zero and total", func(t *testing.T) {
		doc := draftInvoice(t)
		doc.Status = StatusUnpaid

		doc.PaidAmount = dec("0")
		assert.Error(t, ValidateTransition(doc, StatusPartiallypaid))

		doc.PaidAmount = dec("10")
		assert.Error(t, ValidateTransition(doc, StatusPartiallypaid), "paid equal to total is not partial")

		doc.PaidAmount = dec("4")
		assert.NoError(t, ValidateTransition(doc, StatusPartiallypaid))
	})

	t.Run("Paid rejects a paid amount below total", func(t *testing.T) {
		doc := draftInvoice(t)
		doc.Status = StatusPartiallypaid
		doc.PaidAmount = dec("4")
		err := ValidateTransition(doc, StatusPaid)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidState(err))
	})

	t.Run("Paid with no recorded amount settles in full", func(t *testing.T) {
		doc := draftInvoice(t)
		doc.Status = StatusUnpaid
		assert.NoError(t, ValidateTransition(doc, StatusPaid))
	})

	t.Run("Overdue can recover to Partiallypaid or Paid", func(t *testing.T) {
		doc := draftInvoice(t)
		doc.Status = StatusOverdue
		doc.PaidAmount = dec("4")
		assert.NoError(t, ValidateTransition(doc, StatusPartiallypaid))
		doc.PaidAmount = dec("10")
		assert.NoError(t, ValidateTransition(doc, StatusPaid))
	})
}
