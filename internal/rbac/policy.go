// Package rbac centralises authorization predicates. Every lifecycle and
// catalog operation consults these instead of re-implementing role checks at
// each call site.
package rbac

import (
	"github.com/meridian-crm/meridian/internal/shared"
)

// Record is the minimal view of an owned record a policy decision needs.
type Record interface {
	RecordOwner() int64
}

// CanView reports whether the identity may read a record owned by ownerID.
// Clients are scoped separately by customer reference at the query layer.
func CanView(id shared.Identity, ownerID int64) bool {
	if id.IsPrivileged() {
		return true
	}
	return id.OwnerID == ownerID
}

// CanMutate reports whether the identity may create or edit records in the
// tenant owned by ownerID. Clients never mutate.
func CanMutate(id shared.Identity, ownerID int64) bool {
	if !id.IsStaff() {
		return false
	}
	if id.IsPrivileged() {
		return true
	}
	return id.OwnerID == ownerID
}

// CanTransition reports whether the identity may move a record it can see
// between lifecycle states. Status changes are a staff operation; the state
// pair itself is validated by the owning lifecycle, not here.
func CanTransition(id shared.Identity, ownerID int64) bool {
	return CanMutate(id, ownerID)
}

// CanDelete reports whether the identity may delete the record. Non-draft
// document deletion additionally requires the privileged role; that check is
// expressed by the caller passing draft=false.
func CanDelete(id shared.Identity, rec Record, draft bool) bool {
	if id.IsPrivileged() {
		return true
	}
	if !id.IsStaff() || id.OwnerID != rec.RecordOwner() {
		return false
	}
	return draft
}

// CanManageAccounts reports whether the identity may approve, reject or
// suspend other admin accounts.
func CanManageAccounts(id shared.Identity) bool {
	return id.IsPrivileged()
}
