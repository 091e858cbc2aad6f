package auth

import "testing"

func TestRole_Satisfies(t *testing.T) {
	cases := []struct {
		role    Role
		minimum Role
		want    bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleViewer, true},
		{RoleManager, RoleTrader, true},
		{RoleTrader, RoleTrader, true},
		{RoleAnalyst, RoleTrader, false},
		{RoleViewer, RoleAnalyst, false},
		{Role("ghost"), RoleViewer, false},
		{RoleViewer, Role("ghost"), false},
	}

	for _, tc := range cases {
		if got := tc.role.Satisfies(tc.minimum); got != tc.want {
			t.Fatalf("%s satisfies %s = %v, want %v", tc.role, tc.minimum, got, tc.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if Role("superuser").Valid() {
		t.Fatalf("did not expect unknown role to be valid")
	}
}
