package document

import "time"

// LineRequest describes one requested line. Either CatalogItemID references
// a catalog entry to clone, or the ad-hoc fields describe a custom line.
// Monetary fields come in as strings so formatted input can be normalised.
type LineRequest struct {
	CatalogItemID *int64 `json:"catalog_item_id,omitempty"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=500"`
	Quantity      int64  `json:"quantity"`
	Rate          string `json:"rate,omitempty"`
	Tax1Rate      string `json:"tax1_rate,omitempty"`
	Tax2Rate      string `json:"tax2_rate,omitempty"`
}

// CreateDocumentRequest carries fields for creating a document, or replacing
// a draft's content on update. Totals are never accepted from the client;
// they are derived server side.
type CreateDocumentRequest struct {
	Kind          Kind          `json:"kind" validate:"required,oneof=proposal credit_note invoice"`
	CustomerID    int64         `json:"customer_id" validate:"required,gt=0"`
	Currency      string        `json:"currency" validate:"required,len=3"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	DiscountType  DiscountType  `json:"discount_type,omitempty" validate:"omitempty,oneof=percent fixed"`
	DiscountValue string        `json:"discount_value,omitempty"`
	Lines         []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest mirrors CreateDocumentRequest minus the kind, which
// is fixed at creation.
type UpdateDocumentRequest struct {
	CustomerID    int64         `json:"customer_id" validate:"required,gt=0"`
	Currency      string        `json:"currency" validate:"required,len=3"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	DiscountType  DiscountType  `json:"discount_type,omitempty" validate:"omitempty,oneof=percent fixed"`
	DiscountValue string        `json:"discount_value,omitempty"`
	Lines         []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransitionRequest names the target status.
type TransitionRequest struct {
	Status Status `json:"status" validate:"required"`
}

// RecordPaymentRequest records money received against an invoice.
type RecordPaymentRequest struct {
	Amount        string    `json:"amount" validate:"required"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMode   string    `json:"payment_mode,omitempty" validate:"omitempty,max=100"`
	TransactionID string    `json:"transaction_id,omitempty" validate:"omitempty,max=200"`
}

// ListFilter narrows document listings.
type ListFilter struct {
	Kind       Kind
	Status     Status
	CustomerID int64
	Page       int
	PerPage    int
}
