package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"gorm.io/gorm"
)

type LotissementHandler struct {
	db   *gorm.DB
	gate *gate.Gate[*models.User]
}

func NewLotissementHandler(db *gorm.DB, g *gate.Gate[*models.User]) *LotissementHandler {
	return &LotissementHandler{db: db, gate: g}
}

type lotissementParams struct {
	Name        string  `json:"name"`
	Addresse    string  `json:"addresse"`
	Description string  `json:"description"`
	Geometry    string  `json:"geometry"`
	Superficie  float64 `json:"superficie"`
	Perimetre   float64 `json:"perimetre"`
}

func (h *LotissementHandler) List(w http.ResponseWriter, r *http.Request) {
	var items []models.Lotissement
	if err := h.db.Order("name").Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *LotissementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Lotissement
	if err := h.db.Preload("Blocs").First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *LotissementHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionCreate, policy.ResourceLotissement) {
		return
	}
	var p lotissementParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", p.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item := models.Lotissement{
		Name:        p.Name,
		Addresse:    p.Addresse,
		Description: p.Description,
		Geometry:    p.Geometry,
		Superficie:  p.Superficie,
		Perimetre:   p.Perimetre,
	}
	if err := h.db.Create(&item).Error; err != nil {
		if accounts.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"name": "already_taken"})
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *LotissementHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionUpdate, policy.ResourceLotissement) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Lotissement
	if err := h.db.First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	var p lotissementParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{}
	if p.Name != "" {
		updates["name"] = p.Name
	}
	if p.Addresse != "" {
		updates["addresse"] = p.Addresse
	}
	if p.Description != "" {
		updates["description"] = p.Description
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
			if accounts.IsUniqueViolation(err) {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"name": "already_taken"})
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "update_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *LotissementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionDelete, policy.ResourceLotissement) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Lotissement
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

// lotissementStats mirrors the per-subdivision aggregation: bloc and
// parcelle counts per lotissement.
type lotissementStats struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	NombreBlocs     int64  `json:"nombre_blocs"`
	NombreParcelles int64  `json:"nombre_parcelles"`
}

func (h *LotissementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var rows []lotissementStats
	err := h.db.Model(&models.Lotissement{}).
		Select("lotissements.id, lotissements.name, count(distinct blocs.id) as nombre_blocs, count(distinct parcelles.id) as nombre_parcelles").
		Joins("LEFT JOIN blocs ON blocs.lotissement_id = lotissements.id").
		Joins("LEFT JOIN parcelles ON parcelles.bloc_id = blocs.id").
		Group("lotissements.id, lotissements.name").
		Order("lotissements.name").
		Scan(&rows).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// GlobalStats reports totals across the whole hierarchy.
func (h *LotissementHandler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	var lotissements, blocs, parcelles int64
	if err := h.db.Model(&models.Lotissement{}).Count(&lotissements).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	if err := h.db.Model(&models.Bloc{}).Count(&blocs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	if err := h.db.Model(&models.Parcelle{}).Count(&parcelles).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{
		"total_lotissements": lotissements,
		"total_blocs":        blocs,
		"total_parcelles":    parcelles,
	})
}
