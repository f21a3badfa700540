// Package accounts manages admin and staff accounts, including the approval
// workflow new admin registrations go through before they can sign in.
package accounts

import (
	"time"

	"github.com/meridian-crm/meridian/internal/shared"
)

// ApprovalStatus tracks where an account sits in the approval workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// approvalMachine shares the transition primitive with document lifecycles.
var approvalMachine = shared.NewStateMachine("account", map[string][]string{
	string(ApprovalPending):  {string(ApprovalApproved), string(ApprovalRejected)},
	string(ApprovalApproved): nil,
	string(ApprovalRejected): nil,
})

// Account is a staff or admin login. OwnerID points at the tenant root
// account; for tenant admins it equals their own ID.
type Account struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	PasswordHash string         `json:"-"`
	Role         shared.Role    `json:"role"`
	OwnerID      int64          `json:"owner_id"`
	Approval     ApprovalStatus `json:"approval"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// RecordOwner implements rbac.Record.
func (a Account) RecordOwner() int64 { return a.OwnerID }

// CanSignIn reports whether the account passed approval.
func (a Account) CanSignIn() bool { return a.Approval == ApprovalApproved }

// RegisterRequest carries fields for a new admin registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// ApprovalRequest names the target approval status.
type ApprovalRequest struct {
	Status ApprovalStatus `json:"status" validate:"required,oneof=Approved Rejected"`
}
