package document

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-crm/meridian/internal/catalog"
	"github.com/meridian-crm/meridian/internal/money"
	"github.com/meridian-crm/meridian/internal/payments"
	"github.com/meridian-crm/meridian/internal/rbac"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository defines document persistence. Every read and write is owner
// scoped. UpdateStatus atomically commits a status change together with the
// ledger row it produces, when it produces one.
type Repository interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, ownerID, id int64) (Document, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]Document, int, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, doc Document, payment *payments.Payment) error
	Delete(ctx context.Context, ownerID, id int64) error
	ListInvoiceViews(ctx context.Context, ownerID int64) ([]payments.InvoiceView, error)
	ListDueInvoices(ctx context.Context, asOf time.Time) ([]Document, error)
	ListOwnerIDs(ctx context.Context) ([]int64, error)
}

// ItemSource resolves catalog entries for composing lines. The catalog
// repository satisfies it.
type ItemSource interface {
	Get(ctx context.Context, ownerID, id int64) (catalog.Item, error)
}

// CustomerSource checks that a customer reference exists within the tenant.
type CustomerSource interface {
	Exists(ctx context.Context, ownerID, customerID int64) (bool, error)
}

// Service handles document business logic.
type Service struct {
	repo      Repository
	items     ItemSource
	customers CustomerSource
	calc      CalcOptions
	logger    *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, items ItemSource, customers CustomerSource, calc CalcOptions, logger *slog.Logger) *Service {
	return &Service{repo: repo, items: items, customers: customers, calc: calc, logger: logger}
}

// Create composes and stores a new draft document.
func (s *Service) Create(ctx context.Context, id shared.Identity, req CreateDocumentRequest) (Document, error) {
	if !rbac.CanMutate(id, id.OwnerID) {
		return Document{}, shared.ErrForbidden
	}
	if err := money.ValidateCurrency(req.Currency); err != nil {
		return Document{}, shared.Validation("currency", "must be an ISO 4217 code")
	}
	ok, err := s.customers.Exists(ctx, id.OwnerID, req.CustomerID)
	if err != nil {
		return Document{}, err
	}
	if !ok {
		return Document{}, shared.Validation("customer_id", "unknown customer")
	}

	items, err := s.linesFromRequests(ctx, id.OwnerID, req.Lines)
	if err != nil {
		return Document{}, err
	}
	discountType, discountValue, err := parseDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return Document{}, err
	}
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	doc := Document{
		Kind:          req.Kind,
		OwnerID:       id.OwnerID,
		CustomerID:    req.CustomerID,
		Items:         items,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		Currency:      strings.ToUpper(req.Currency),
		IssueDate:     issueDate,
		DueDate:       req.DueDate,
		Status:        StatusDraft,
		PaidAmount:    decimal.Zero,
		CreatedBy:     id.ActorID,
	}
	doc = Recompute(doc, s.calc)
	return s.repo.Create(ctx, doc)
}

// Get returns one of the caller's documents.
func (s *Service) Get(ctx context.Context, id shared.Identity, docID int64) (Document, error) {
	doc, err := s.repo.Get(ctx, id.OwnerID, docID)
	if err != nil {
		return Document{}, err
	}
	if !rbac.CanView(id, doc.OwnerID) {
		return Document{}, shared.ErrNotFound
	}
	return doc, nil
}

// List returns the caller's documents.
func (s *Service) List(ctx context.Context, id shared.Identity, filter ListFilter) ([]Document, int, error) {
	return s.repo.List(ctx, id.OwnerID, filter)
}

// Update replaces a draft's content and re-derives its totals. Documents
// outside Draft have frozen financial fields; only RecordPayment and
// Transition touch them.
func (s *Service) Update(ctx context.Context, id shared.Identity, docID int64, req UpdateDocumentRequest) (Document, error) {
	doc, err := s.Get(ctx, id, docID)
	if err != nil {
		return Document{}, err
	}
	if !rbac.CanMutate(id, doc.OwnerID) {
		return Document{}, shared.ErrForbidden
	}
	if !doc.IsDraft() {
		return Document{}, &shared.InvalidStateError{
			Entity: string(doc.Kind), From: string(doc.Status), To: string(doc.Status),
			Reason: "financial fields are frozen outside Draft",
		}
	}
	if err := money.ValidateCurrency(req.Currency); err != nil {
		return Document{}, shared.Validation("currency", "must be an ISO 4217 code")
	}
	ok, err := s.customers.Exists(ctx, doc.OwnerID, req.CustomerID)
	if err != nil {
		return Document{}, err
	}
	if !ok {
		return Document{}, shared.Validation("customer_id", "unknown customer")
	}

	items, err := s.linesFromRequests(ctx, doc.OwnerID, req.Lines)
	if err != nil {
		return Document{}, err
	}
	discountType, discountValue, err := parseDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return Document{}, err
	}

	doc.CustomerID = req.CustomerID
	doc.Currency = strings.ToUpper(req.Currency)
	if !req.IssueDate.IsZero() {
		doc.IssueDate = req.IssueDate
	}
	doc.DueDate = req.DueDate
	doc.Items = items
	doc.DiscountType = discountType
	doc.DiscountValue = discountValue
	doc = Recompute(doc, s.calc)
	if err := s.repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.repo.Get(ctx, doc.OwnerID, doc.ID)
}

// Transition moves a document to a new status. Marking an invoice Paid with
// an outstanding balance writes a derived full-settlement ledger row in the
// same transaction, so the ledger keeps agreeing with the invoice.
func (s *Service) Transition(ctx context.Context, id shared.Identity, docID int64, to Status) (Document, error) {
	doc, err := s.Get(ctx, id, docID)
	if err != nil {
		return Document{}, err
	}
	if !rbac.CanTransition(id, doc.OwnerID) {
		return Document{}, shared.ErrForbidden
	}

	var payment *payments.Payment
	if doc.Kind == KindInvoice && to == StatusPaid {
		remaining := doc.Total.Sub(doc.PaidAmount)
		if remaining.IsPositive() {
			doc.PaidAmount = doc.Total
			payment = &payments.Payment{
				ID:          payments.DerivedID(doc.ID, payments.KindFull),
				InvoiceID:   doc.ID,
				OwnerID:     doc.OwnerID,
				Amount:      remaining,
				Currency:    doc.Currency,
				PaymentDate: time.Now(),
				Status:      payments.StatusCompleted,
			}
		}
	}

	if err := ValidateTransition(doc, to); err != nil {
		return Document{}, err
	}
	doc.Status = to
	if err := s.repo.UpdateStatus(ctx, doc, payment); err != nil {
		return Document{}, err
	}
	s.logger.Info("document transitioned",
		slog.Int64("document_id", doc.ID),
		slog.String("kind", string(doc.Kind)),
		slog.String("status", string(to)))
	return doc, nil
}

// RecordPayment adds money received against an invoice and moves its status
// accordingly. Covering the total transitions to Paid; anything short of it
// transitions to (or stays at) Partiallypaid. The ledger row and the status
// change commit together.
func (s *Service) RecordPayment(ctx context.Context, id shared.Identity, docID int64, req RecordPaymentRequest) (Document, error) {
	doc, err := s.Get(ctx, id, docID)
	if err != nil {
		return Document{}, err
	}
	if !rbac.CanMutate(id, doc.OwnerID) {
		return Document{}, shared.ErrForbidden
	}
	if doc.Kind != KindInvoice {
		return Document{}, shared.Validation("kind", "payments apply to invoices only")
	}
	switch doc.Status {
	case StatusUnpaid, StatusPartiallypaid, StatusOverdue:
	default:
		return Document{}, &shared.InvalidStateError{
			Entity: string(doc.Kind), From: string(doc.Status), To: string(StatusPartiallypaid),
			Reason: "payments can only be recorded against issued unpaid invoices",
		}
	}

	amount, err := money.Parse(req.Amount)
	if err != nil || !amount.IsPositive() {
		return Document{}, shared.Validation("amount", "must be a positive monetary amount")
	}
	newPaid := doc.PaidAmount.Add(amount)
	if newPaid.GreaterThan(doc.Total) {
		return Document{}, shared.Validation("amount", "exceeds the outstanding balance")
	}

	to := StatusPartiallypaid
	if newPaid.GreaterThanOrEqual(doc.Total) {
		to = StatusPaid
	}
	doc.PaidAmount = newPaid
	if to != doc.Status {
		if err := ValidateTransition(doc, to); err != nil {
			return Document{}, err
		}
		doc.Status = to
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	payment := payments.Payment{
		ID:            uuid.New(),
		InvoiceID:     doc.ID,
		OwnerID:       doc.OwnerID,
		Amount:        amount,
		Currency:      doc.Currency,
		PaymentDate:   paymentDate,
		Mode:          req.PaymentMode,
		TransactionID: req.TransactionID,
		Status:        payments.StatusCompleted,
	}
	if err := s.repo.UpdateStatus(ctx, doc, &payment); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes a document. Drafts can be deleted by their own staff;
// anything past Draft needs a privileged role. Catalog items referenced by
// the document's lines are untouched.
func (s *Service) Delete(ctx context.Context, id shared.Identity, docID int64) error {
	doc, err := s.Get(ctx, id, docID)
	if err != nil {
		return err
	}
	if !rbac.CanDelete(id, doc, doc.IsDraft()) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, doc.OwnerID, doc.ID)
}

// MarkOverdueInvoices flips unpaid and partially paid invoices past their due
// date to Overdue. It runs from the scheduled scan and returns how many
// invoices moved.
func (s *Service) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.repo.ListDueInvoices(ctx, asOf)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, doc := range due {
		if err := ValidateTransition(doc, StatusOverdue); err != nil {
			continue
		}
		doc.Status = StatusOverdue
		if err := s.repo.UpdateStatus(ctx, doc, nil); err != nil {
			s.logger.Error("mark overdue", slog.Int64("document_id", doc.ID), slog.Any("error", err))
			continue
		}
		moved++
	}
	return moved, nil
}

// OwnerIDs lists tenants that own documents. The reconciliation job iterates
// them.
func (s *Service) OwnerIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListOwnerIDs(ctx)
}

func (s *Service) linesFromRequests(ctx context.Context, ownerID int64, reqs []LineRequest) ([]LineItem, error) {
	if len(reqs) == 0 {
		return nil, shared.Validation("lines", "must contain at least one line")
	}
	items := make([]LineItem, 0, len(reqs))
	for _, lr := range reqs {
		if lr.CatalogItemID != nil {
			entry, err := s.items.Get(ctx, ownerID, *lr.CatalogItemID)
			if err != nil {
				return nil, shared.Validation("catalog_item_id", "unknown catalog item")
			}
			items = append(items, FromCatalog(entry, lr.Quantity))
			continue
		}
		rate, err := money.Parse(lr.Rate)
		if err != nil {
			return nil, shared.Validation("rate", "must be a monetary amount")
		}
		tax1, err := parseOptionalPercent(lr.Tax1Rate)
		if err != nil {
			return nil, shared.Validation("tax1_rate", "must be a percentage")
		}
		tax2, err := parseOptionalPercent(lr.Tax2Rate)
		if err != nil {
			return nil, shared.Validation("tax2_rate", "must be a percentage")
		}
		line, err := NewLine(lr.Description, lr.Quantity, rate, tax1, tax2)
		if err != nil {
			return nil, err
		}
		items = append(items, line)
	}
	return items, nil
}

func parseDiscount(dt DiscountType, raw string) (DiscountType, decimal.Decimal, error) {
	if dt == "" {
		return DiscountPercent, decimal.Zero, nil
	}
	if raw == "" {
		return dt, decimal.Zero, nil
	}
	value, err := money.Parse(raw)
	if err != nil {
		return dt, decimal.Zero, shared.Validation("discount_value", "must be a non-negative number")
	}
	if value.IsNegative() {
		return dt, decimal.Zero, shared.Validation("discount_value", "must be a non-negative number")
	}
	return dt, value, nil
}

func parseOptionalPercent(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return money.ClampPercent(p), nil
}
