package roles_test

import (
	"testing"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
)

func TestAll(t *testing.T) {
	all := roles.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(all))
	}
}

func TestIsValid(t *testing.T) {
	for _, name := range roles.All() {
		if !roles.IsValid(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	if roles.IsValid("administrateurs") {
		t.Error("expected partial role name to be invalid")
	}
	if roles.IsValid("") {
		t.Error("expected empty role name to be invalid")
	}
}
