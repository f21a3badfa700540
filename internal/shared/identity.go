package shared

// Role enumerates the roles known to the system.
type Role string

const (
	// RoleSuperAdmin may manage other admin accounts and override deletes.
	RoleSuperAdmin Role = "superadmin"
	// RoleAdmin owns a tenant: its catalog, documents and payments.
	RoleAdmin Role = "admin"
	// RoleStaff works within a tenant on behalf of its admin.
	RoleStaff Role = "staff"
	// RoleClient sees only its own projects, documents and payments.
	RoleClient Role = "client"
)

// Identity describes the authenticated actor for a request. It is passed
// explicitly into every service call; the core never reads ambient state.
type Identity struct {
	ActorID int64
	OwnerID int64
	Role    Role
}

// IsPrivileged reports whether the identity may act across tenants.
func (id Identity) IsPrivileged() bool {
	return id.Role == RoleSuperAdmin
}

// IsStaff reports whether the identity belongs to tenant staff (admin
// included).
func (id Identity) IsStaff() bool {
	return id.Role == RoleAdmin || id.Role == RoleStaff || id.Role == RoleSuperAdmin
}
