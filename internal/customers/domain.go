// Package customers holds the tenant customer directory consumed by
// documents. Documents reference customers by ID; the directory validates
// those references and backs the customer listing.
package customers

import "time"

// Customer is one directory entry, scoped to its owning tenant.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordOwner implements rbac.Record.
func (c Customer) RecordOwner() int64 { return c.OwnerID }

// CreateCustomerRequest carries fields for creating or updating a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
}
