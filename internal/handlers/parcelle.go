package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/pdf"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"gorm.io/gorm"
)

type ParcelleHandler struct {
	db   *gorm.DB
	gate *gate.Gate[*models.User]
	pdf  *pdf.Service
}

func NewParcelleHandler(db *gorm.DB, g *gate.Gate[*models.User], pdfSvc *pdf.Service) *ParcelleHandler {
	return &ParcelleHandler{db: db, gate: g, pdf: pdfSvc}
}

type parcelleParams struct {
	BlocID         uint    `json:"bloc_id"`
	ProprietaireID uint    `json:"proprietaire_id"`
	Geometry       string  `json:"geometry"`
	Superficie     float64 `json:"superficie"`
	Perimetre      float64 `json:"perimetre"`
}

// List returns the parcelles visible to the caller: everything for
// administrators, only self-owned records for everyone else.
func (h *ParcelleHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r.Context())
	var items []models.Parcelle
	if err := h.db.Scopes(policy.ParcelleVisibility(caller)).Order("id").Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// Get applies the same visibility scope as List, so a parcelle outside the
// caller's scope reads as not-found rather than forbidden.
func (h *ParcelleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	caller := auth.CurrentUser(r.Context())
	var item models.Parcelle
	if err := h.db.Scopes(policy.ParcelleVisibility(caller)).First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Mine lists the caller's own parcelles. Reserved to the proprietaires role.
func (h *ParcelleHandler) Mine(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r.Context())
	if !policy.IsProprietaire(caller) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var items []models.Parcelle
	if err := h.db.Where("proprietaire_id = ?", caller.ID).Order("id").Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *ParcelleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionCreate, policy.ResourceParcelle) {
		return
	}
	var p parcelleParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if p.BlocID == 0 {
		v["bloc_id"] = "required"
	} else {
		var count int64
		if err := h.db.Model(&models.Bloc{}).Where("id = ?", p.BlocID).Count(&count).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
			return
		}
		if count == 0 {
			v["bloc_id"] = "unknown_bloc"
		}
	}
	if p.ProprietaireID == 0 {
		v["proprietaire_id"] = "required"
	} else {
		var count int64
		if err := h.db.Model(&models.User{}).Where("id = ?", p.ProprietaireID).Count(&count).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
			return
		}
		if count == 0 {
			v["proprietaire_id"] = "unknown_user"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item := models.Parcelle{
		BlocID:         p.BlocID,
		ProprietaireID: p.ProprietaireID,
		Geometry:       p.Geometry,
		Superficie:     p.Superficie,
		Perimetre:      p.Perimetre,
	}
	if err := h.db.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *ParcelleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionUpdate, policy.ResourceParcelle) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Parcelle
	if err := h.db.First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	var p parcelleParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{}
	if p.BlocID != 0 {
		updates["bloc_id"] = p.BlocID
	}
	if p.ProprietaireID != 0 {
		updates["proprietaire_id"] = p.ProprietaireID
	}
	if p.Geometry != "" {
		updates["geometry"] = p.Geometry
	}
	if p.Superficie > 0 {
		updates["superficie"] = p.Superficie
	}
	if p.Perimetre > 0 {
		updates["perimetre"] = p.Perimetre
	}
	if len(updates) > 0 {
		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "update_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *ParcelleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionDelete, policy.ResourceParcelle) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Parcelle
	if err := h.db.First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	if err := h.db.Delete(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Export renders the attestation PDF for one of the caller's own parcelles.
// Owners only; a parcelle owned by someone else reads as not-found.
func (h *ParcelleHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionExport, policy.ResourceParcelle) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	caller := auth.CurrentUser(r.Context())
	var item models.Parcelle
	if err := h.db.Where("proprietaire_id = ?", caller.ID).First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	data, err := h.pdf.ParcelleReport(&item, caller)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}
	httpx.PDF(w, fmt.Sprintf("parcelle_%d.pdf", item.ID), data)
}
