package policy

import (
	"testing"

	"finance-tracker/internal/models"
)

var (
	admin = Principal{ID: 1, Role: models.RoleAdmin}
	user  = Principal{ID: 2, Role: models.RoleUser}
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name    string
		p       Principal
		ownerID uint
		want    bool
	}{
		{"user own data", user, 2, true},
		{"user other data", user, 3, false},
		{"admin own data", admin, 1, true},
		{"admin other data", admin, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccess(tc.p, tc.ownerID); got != tc.want {
				t.Errorf("CanAccess(%+v, %d) = %v, want %v", tc.p, tc.ownerID, got, tc.want)
			}
		})
	}
}

func TestAdminOnlyChecks(t *testing.T) {
	if !CanManageCategories(admin) || CanManageCategories(user) {
		t.Error("category management should be admin-only")
	}
	if !CanManageUsers(admin) || CanManageUsers(user) {
		t.Error("user management should be admin-only")
	}
}

func TestCanDeleteUser(t *testing.T) {
	if CanDeleteUser(admin, admin.ID) {
		t.Error("admin must not delete their own account")
	}
	if !CanDeleteUser(admin, 5) {
		t.Error("admin should delete other accounts")
	}
	if CanDeleteUser(user, 5) {
		t.Error("regular user must not delete accounts")
	}
}

func TestScopeUser(t *testing.T) {
	if got := ScopeUser(admin, 7); got != 7 {
		t.Errorf("admin scope = %d, want requested 7", got)
	}
	if got := ScopeUser(admin, 0); got != 0 {
		t.Errorf("admin scope = %d, want 0 (all users)", got)
	}
	if got := ScopeUser(user, 7); got != user.ID {
		t.Errorf("user scope = %d, want own id %d", got, user.ID)
	}
	if got := ScopeUser(user, 0); got != user.ID {
		t.Errorf("user scope = %d, want own id %d", got, user.ID)
	}
}

func TestFromUser(t *testing.T) {
	u := models.User{Role: models.RoleAdmin}
	u.ID = 9
	p := FromUser(&u)
	if p.ID != 9 || !p.IsAdmin() {
		t.Errorf("FromUser = %+v", p)
	}
}
