package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
)

func TestLotissementCreate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")

	rec := env.do(t, admin, http.MethodPost, "/lotissements", map[string]any{
		"name":       "Mendong",
		"addresse":   "Yaounde VI",
		"superficie": 120000.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// The name is unique.
	rec = env.do(t, admin, http.MethodPost, "/lotissements", map[string]any{"name": "Mendong"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate name, got %d", rec.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	decodeJSON(t, rec, &body)
	if body.Details["name"] != "already_taken" {
		t.Errorf("expected name already_taken, got %v", body.Details)
	}

	// Name is required.
	rec = env.do(t, admin, http.MethodPost, "/lotissements", map[string]any{"addresse": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", rec.Code)
	}
}

func TestLotissementReads_OpenToAllAuthenticated(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	env.seedParcelle(t, owner)

	rec := env.do(t, owner, http.MethodGet, "/lotissements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner read, got %d", rec.Code)
	}
	var items []models.Lotissement
	decodeJSON(t, rec, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 lotissement, got %d", len(items))
	}

	rec = env.do(t, admin, http.MethodGet, fmt.Sprintf("/lotissements/%d", items[0].ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Writes stay admin-only.
	rec = env.do(t, owner, http.MethodPost, "/lotissements", map[string]any{"name": "Etoudi"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for owner write, got %d", rec.Code)
	}
}

func TestBlocCreate_RequiresKnownLotissement(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")

	rec := env.do(t, admin, http.MethodPost, "/blocs", map[string]any{
		"name":           "B2",
		"lotissement_id": 99999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	decodeJSON(t, rec, &body)
	if body.Details["lotissement_id"] != "unknown_lotissement" {
		t.Errorf("expected unknown_lotissement, got %v", body.Details)
	}

	lot := models.Lotissement{Name: "Nsam"}
	if err := env.db.Create(&lot).Error; err != nil {
		t.Fatalf("lotissement: %v", err)
	}
	rec = env.do(t, admin, http.MethodPost, "/blocs", map[string]any{
		"name":           "B2",
		"lotissement_id": lot.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBlocList_FilterByLotissement(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	p := env.seedParcelle(t, owner)

	other := models.Lotissement{Name: "Ekounou"}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("lotissement: %v", err)
	}
	if err := env.db.Create(&models.Bloc{Name: "Z", LotissementID: other.ID}).Error; err != nil {
		t.Fatalf("bloc: %v", err)
	}

	var seedBloc models.Bloc
	if err := env.db.First(&seedBloc, p.BlocID).Error; err != nil {
		t.Fatalf("reload bloc: %v", err)
	}

	rec := env.do(t, admin, http.MethodGet, fmt.Sprintf("/blocs?lotissement_id=%d", seedBloc.LotissementID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []models.Bloc
	decodeJSON(t, rec, &items)
	if len(items) != 1 || items[0].ID != seedBloc.ID {
		t.Errorf("expected only the filtered bloc, got %d results", len(items))
	}
}

func TestStatsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	env.seedParcelle(t, owner)
	env.seedParcelle(t, owner)

	rec := env.do(t, admin, http.MethodGet, "/stats/global", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var global map[string]int64
	decodeJSON(t, rec, &global)
	if global["total_lotissements"] != 2 || global["total_blocs"] != 2 || global["total_parcelles"] != 2 {
		t.Errorf("unexpected global stats: %v", global)
	}

	rec = env.do(t, admin, http.MethodGet, "/lotissements/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var lotStats []struct {
		Name            string `json:"name"`
		NombreBlocs     int64  `json:"nombre_blocs"`
		NombreParcelles int64  `json:"nombre_parcelles"`
	}
	decodeJSON(t, rec, &lotStats)
	if len(lotStats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lotStats))
	}
	for _, row := range lotStats {
		if row.NombreBlocs != 1 || row.NombreParcelles != 1 {
			t.Errorf("unexpected counts for %s: %+v", row.Name, row)
		}
	}

	rec = env.do(t, admin, http.MethodGet, "/blocs/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var blocStats []struct {
		NombreParcelles int64 `json:"nombre_parcelles"`
	}
	decodeJSON(t, rec, &blocStats)
	if len(blocStats) != 2 {
		t.Errorf("expected 2 bloc rows, got %d", len(blocStats))
	}
}

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	owner := env.createOwner(t, "owner@example.com")
	p := env.seedParcelle(t, owner)

	// parcelle_id is mandatory and must be numeric.
	rec := env.do(t, admin, http.MethodGet, "/documents", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without parcelle_id, got %d", rec.Code)
	}
	rec = env.do(t, admin, http.MethodGet, "/documents?parcelle_id=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric parcelle_id, got %d", rec.Code)
	}

	// Nothing attached yet.
	rec = env.do(t, admin, http.MethodGet, fmt.Sprintf("/documents?parcelle_id=%d", p.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before attach, got %d", rec.Code)
	}

	rec = env.do(t, admin, http.MethodPost, "/documents", map[string]any{
		"parcelle_id": p.ID,
		"document":    "titres/attestation_42.pdf",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc models.Document
	decodeJSON(t, rec, &doc)

	rec = env.do(t, admin, http.MethodGet, fmt.Sprintf("/documents?parcelle_id=%d", p.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after attach, got %d", rec.Code)
	}

	rec = env.do(t, admin, http.MethodDelete, fmt.Sprintf("/documents/%d", doc.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	rec = env.do(t, admin, http.MethodGet, fmt.Sprintf("/documents?parcelle_id=%d", p.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
