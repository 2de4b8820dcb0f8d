package auth

import "testing"

func superAdminPrincipal() *Principal {
	return &Principal{UserID: "usr-super01", Email: "root@example.com", Role: RoleSuperAdmin}
}

func adminPrincipal() *Principal {
	return &Principal{UserID: "usr-admin01", Email: "staff@example.com", Role: RoleAdmin}
}

func TestCanAccessCustomerOwnedBy(t *testing.T) {
	tests := []struct {
		name    string
		p       *Principal
		ownerID string
		want    bool
	}{
		{"superadmin any owner", superAdminPrincipal(), "usr-other", true},
		{"superadmin own records", superAdminPrincipal(), "usr-super01", true},
		{"admin own records", adminPrincipal(), "usr-admin01", true},
		{"admin other owner", adminPrincipal(), "usr-other", false},
		{"nil principal", nil, "usr-admin01", false},
		{"unknown role", &Principal{UserID: "usr-x", Role: Role("GUEST")}, "usr-x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessCustomerOwnedBy(tt.p, tt.ownerID); got != tt.want {
				t.Errorf("CanAccessCustomerOwnedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanCreateCustomers(t *testing.T) {
	if !CanCreateCustomers(adminPrincipal()) {
		t.Error("admin should create customers")
	}
	if !CanCreateCustomers(superAdminPrincipal()) {
		t.Error("superadmin should create customers")
	}
	if CanCreateCustomers(nil) {
		t.Error("nil principal should not create customers")
	}
	if CanCreateCustomers(&Principal{Role: Role("GUEST")}) {
		t.Error("unknown role should not create customers")
	}
}

func TestCanListAllCustomers(t *testing.T) {
	if !CanListAllCustomers(superAdminPrincipal()) {
		t.Error("superadmin should list all customers")
	}
	if CanListAllCustomers(adminPrincipal()) {
		t.Error("admin listing should be scoped, not all")
	}
	if CanListAllCustomers(nil) {
		t.Error("nil principal should not list customers")
	}
}

func TestCanManageAccounts(t *testing.T) {
	if !CanManageAccounts(superAdminPrincipal()) {
		t.Error("superadmin should manage accounts")
	}
	if CanManageAccounts(adminPrincipal()) {
		t.Error("admin should not manage accounts")
	}
	if CanManageAccounts(nil) {
		t.Error("nil principal should not manage accounts")
	}
}

func TestCanDeactivateAccount(t *testing.T) {
	super := superAdminPrincipal()

	if !CanDeactivateAccount(super, "usr-other") {
		t.Error("superadmin should deactivate other accounts")
	}
	if CanDeactivateAccount(super, super.UserID) {
		t.Error("self-deactivation should be denied")
	}
	if CanDeactivateAccount(adminPrincipal(), "usr-other") {
		t.Error("admin should not deactivate accounts")
	}
}

func TestCanViewAuditLog(t *testing.T) {
	if !CanViewAuditLog(superAdminPrincipal()) {
		t.Error("superadmin should view audit log")
	}
	if CanViewAuditLog(adminPrincipal()) {
		t.Error("admin should not view audit log")
	}
}

func TestAssignableRole(t *testing.T) {
	super := superAdminPrincipal()

	if !AssignableRole(super, RoleAdmin) {
		t.Error("superadmin should assign ADMIN")
	}
	if AssignableRole(super, RoleSuperAdmin) {
		t.Error("SUPERADMIN must not be assignable through the API")
	}
	if AssignableRole(super, Role("GUEST")) {
		t.Error("unknown role must not be assignable")
	}
	if AssignableRole(adminPrincipal(), RoleAdmin) {
		t.Error("admin must not assign roles")
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole(RoleAdmin) || !IsValidRole(RoleSuperAdmin) {
		t.Error("ADMIN and SUPERADMIN should be valid roles")
	}
	if IsValidRole(Role("admin")) {
		t.Error("roles are case-sensitive; lowercase should be invalid")
	}
	if IsValidRole(Role("")) {
		t.Error("empty role should be invalid")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"plain@example.com", "plain@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "user+tag@example.org"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}
	invalid := []string{"", "no-at-sign", "@example.com", "a@b", "two@@example.com", "spaces in@example.com"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}
