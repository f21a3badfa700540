// Package catalog implements the tenant-scoped reusable item catalog.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a reusable catalog entry owned by a single tenant. Documents clone
// items into line items; they never hold references, so later edits to an
// item cannot retroactively change composed documents.
type Item struct {
	ID              int64           `json:"id"`
	Description     string          `json:"description"`
	LongDescription *string         `json:"long_description,omitempty"`
	Rate            decimal.Decimal `json:"rate"`
	Tax1Rate        decimal.Decimal `json:"tax1_rate"`
	Tax2Rate        decimal.Decimal `json:"tax2_rate"`
	Unit            *string         `json:"unit,omitempty"`
	GroupName       *string         `json:"group_name,omitempty"`
	OwnerID         int64           `json:"owner_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecordOwner implements rbac.Record.
func (i Item) RecordOwner() int64 { return i.OwnerID }

// CreateItemRequest carries fields for creating or updating an item. Rate is
// accepted as a string so formatted input ("$12.50") can be normalised before
// storage.
type CreateItemRequest struct {
	Description     string  `json:"description" validate:"required,max=500"`
	LongDescription *string `json:"long_description,omitempty"`
	Rate            string  `json:"rate" validate:"required"`
	Tax1Rate        string  `json:"tax1_rate,omitempty"`
	Tax2Rate        string  `json:"tax2_rate,omitempty"`
	Unit            *string `json:"unit,omitempty" validate:"omitempty,max=50"`
	GroupName       *string `json:"group_name,omitempty" validate:"omitempty,max=100"`
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search    string
	GroupName string
	Page      int
	PerPage   int
}

// ImportRow is one normalised row of a bulk import. Keys are lower-cased
// trimmed column names.
type ImportRow map[string]string

// RejectedRow records why a bulk-import row was skipped.
type RejectedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult partitions a bulk import. The batch never fails atomically on
// a single bad row.
type ImportResult struct {
	Imported []Item        `json:"imported"`
	Rejected []RejectedRow `json:"rejected"`
}
