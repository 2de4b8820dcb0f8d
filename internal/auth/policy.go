package auth

// Authorisation policy for Customer Core.
//
// Decisions are pure functions of the principal and the target — no database
// lookups, no configuration. The default answer is always deny: a nil
// principal or an unknown role gets nothing.

// CanAccessCustomerOwnedBy returns true if the principal may read or mutate
// a customer record created by the given account.
// SUPERADMIN sees everything; ADMIN only records it created itself.
func CanAccessCustomerOwnedBy(p *Principal, ownerID string) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return ownerID == p.UserID
	default:
		return false
	}
}

// CanCreateCustomers returns true if the principal may create customer records.
// Any authenticated staff account can.
func CanCreateCustomers(p *Principal) bool {
	if p == nil {
		return false
	}
	return IsValidRole(p.Role)
}

// CanListAllCustomers returns true if the principal may list customers
// across all creators. ADMIN listings are scoped to their own records.
func CanListAllCustomers(p *Principal) bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// CanManageAccounts returns true if the principal may create, update, or
// deactivate staff accounts.
func CanManageAccounts(p *Principal) bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// CanDeactivateAccount returns true if the principal may deactivate the
// given account. Self-deactivation is always denied so the system cannot be
// locked out by its last active SUPERADMIN.
func CanDeactivateAccount(p *Principal, targetID string) bool {
	if !CanManageAccounts(p) {
		return false
	}
	return targetID != p.UserID
}

// IsSelf returns true if the principal is the given account.
func IsSelf(p *Principal, targetID string) bool {
	return p != nil && targetID != "" && p.UserID == targetID
}

// CanViewAuditLog returns true if the principal may read the audit trail.
func CanViewAuditLog(p *Principal) bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// AssignableRole returns true if the principal may assign the given role to
// a newly created account. SUPERADMIN accounts are only created through
// seeding; the API hands out ADMIN and nothing else.
func AssignableRole(p *Principal, role Role) bool {
	if !CanManageAccounts(p) {
		return false
	}
	return role == RoleAdmin
}
