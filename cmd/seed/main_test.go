package main

import (
	"testing"
)

func TestBuiltInRoles_SuperAdminOnly(t *testing.T) {
	t.Parallel()

	roles := builtInRoles()
	if len(roles) != 1 {
		t.Fatalf("builtInRoles count = %d, want 1", len(roles))
	}
	if roles[0].Name != "super_admin" {
		t.Fatalf("builtInRoles[0].Name = %q, want super_admin", roles[0].Name)
	}
}

func TestBuiltInPermissions_NoDuplicateIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for _, p := range builtInPermissions() {
		if _, ok := seen[p.ID]; ok {
			t.Fatalf("duplicate permission id: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Applet == "" || p.Action == "" {
			t.Fatalf("permission %s missing applet or action", p.ID)
		}
	}
}
