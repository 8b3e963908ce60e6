package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
)

func TestParcelleList_Scoping(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	ownerA := env.createOwner(t, "a@example.com")
	ownerB := env.createOwner(t, "b@example.com")
	p1 := env.seedParcelle(t, ownerA)
	env.seedParcelle(t, ownerB)

	// Admin sees every parcelle.
	rec := env.do(t, admin, http.MethodGet, "/parcelles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []models.Parcelle
	decodeJSON(t, rec, &items)
	if len(items) != 2 {
		t.Errorf("expected admin to list 2 parcelles, got %d", len(items))
	}

	// Owner A sees only their own.
	rec = env.do(t, ownerA, http.MethodGet, "/parcelles", nil)
	decodeJSON(t, rec, &items)
	if len(items) != 1 || items[0].ID != p1.ID {
		t.Errorf("expected owner A to list only their parcelle, got %d results", len(items))
	}
}

func TestParcelleGet_OutOfScopeReads404(t *testing.T) {
	env := newTestEnv(t)
	ownerA := env.createOwner(t, "a@example.com")
	ownerB := env.createOwner(t, "b@example.com")
	p1 := env.seedParcelle(t, ownerA)

	// The owner can read it.
	rec := env.do(t, ownerA, http.MethodGet, fmt.Sprintf("/parcelles/%d", p1.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rec.Code)
	}

	// Another owner gets not-found, not forbidden.
	rec = env.do(t, ownerB, http.MethodGet, fmt.Sprintf("/parcelles/%d", p1.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out-of-scope parcelle, got %d", rec.Code)
	}
}

func TestParcelleMine(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	p := env.seedParcelle(t, owner)

	rec := env.do(t, owner, http.MethodGet, "/parcelles/mine", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []models.Parcelle
	decodeJSON(t, rec, &items)
	if len(items) != 1 || items[0].ID != p.ID {
		t.Errorf("expected the owner's parcelle, got %d results", len(items))
	}

	// Reserved to the proprietaires role.
	rec = env.do(t, admin, http.MethodGet, "/parcelles/mine", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-proprietaire, got %d", rec.Code)
	}
}

func TestParcelleCreate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	seed := env.seedParcelle(t, owner)

	rec := env.do(t, admin, http.MethodPost, "/parcelles", map[string]any{
		"bloc_id":         seed.BlocID,
		"proprietaire_id": owner.ID,
		"superficie":      650.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unknown references are validation errors.
	rec = env.do(t, admin, http.MethodPost, "/parcelles", map[string]any{
		"bloc_id":         99999,
		"proprietaire_id": 99999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown references, got %d", rec.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	decodeJSON(t, rec, &body)
	if body.Details["bloc_id"] != "unknown_bloc" || body.Details["proprietaire_id"] != "unknown_user" {
		t.Errorf("unexpected violations: %v", body.Details)
	}

	// Owners cannot create parcelles.
	rec = env.do(t, owner, http.MethodPost, "/parcelles", map[string]any{
		"bloc_id":         seed.BlocID,
		"proprietaire_id": owner.ID,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for owner, got %d", rec.Code)
	}
}

func TestParcelleCreate_ReferenceCheckFailure(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")

	// Break the blocs table so the existence check fails outright. A storage
	// failure is a server error, not an unknown-reference validation error.
	if err := env.db.Exec("ALTER TABLE blocs RENAME TO blocs_unavailable").Error; err != nil {
		t.Fatalf("rename table: %v", err)
	}

	rec := env.do(t, admin, http.MethodPost, "/parcelles", map[string]any{
		"bloc_id":         1,
		"proprietaire_id": admin.ID,
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the reference check cannot run, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestParcelleExport(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	ownerA := env.createOwner(t, "a@example.com")
	ownerB := env.createOwner(t, "b@example.com")
	p := env.seedParcelle(t, ownerA)

	// Owner downloads the attestation.
	rec := env.do(t, ownerA, http.MethodGet, fmt.Sprintf("/parcelles/%d/export", p.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF body")
	}

	// Someone else's parcelle reads as not-found.
	rec = env.do(t, ownerB, http.MethodGet, fmt.Sprintf("/parcelles/%d/export", p.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", rec.Code)
	}

	// Export is reserved to the proprietaires role.
	rec = env.do(t, admin, http.MethodGet, fmt.Sprintf("/parcelles/%d/export", p.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-proprietaire, got %d", rec.Code)
	}
}

func TestParcelleUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	p := env.seedParcelle(t, owner)

	rec := env.do(t, admin, http.MethodPut, fmt.Sprintf("/parcelles/%d", p.ID), map[string]any{
		"superficie": 999.5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stored models.Parcelle
	if err := env.db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Superficie != 999.5 {
		t.Errorf("expected superficie updated, got %v", stored.Superficie)
	}

	rec = env.do(t, owner, http.MethodDelete, fmt.Sprintf("/parcelles/%d", p.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for owner delete, got %d", rec.Code)
	}

	rec = env.do(t, admin, http.MethodDelete, fmt.Sprintf("/parcelles/%d", p.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := env.db.First(&stored, p.ID).Error; err == nil {
		t.Error("expected parcelle to be gone")
	}
}
