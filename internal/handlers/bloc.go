package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"gorm.io/gorm"
)

type BlocHandler struct {
	db   *gorm.DB
	gate *gate.Gate[*models.User]
}

func NewBlocHandler(db *gorm.DB, g *gate.Gate[*models.User]) *BlocHandler {
	return &BlocHandler{db: db, gate: g}
}

type blocParams struct {
	Name          string  `json:"name"`
	LotissementID uint    `json:"lotissement_id"`
	Description   string  `json:"description"`
	Geometry      string  `json:"geometry"`
	Superficie    float64 `json:"superficie"`
	Perimetre     float64 `json:"perimetre"`
}

func (h *BlocHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.Order("name")
	if lotID := r.URL.Query().Get("lotissement_id"); lotID != "" {
		q = q.Where("lotissement_id = ?", lotID)
	}
	var items []models.Bloc
	if err := q.Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *BlocHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Bloc
	if err := h.db.First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *BlocHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionCreate, policy.ResourceBloc) {
		return
	}
	var p blocParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", p.Name, v)
	if p.LotissementID == 0 {
		v["lotissement_id"] = "required"
	} else {
		var count int64
		if err := h.db.Model(&models.Lotissement{}).Where("id = ?", p.LotissementID).Count(&count).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
			return
		}
		if count == 0 {
			v["lotissement_id"] = "unknown_lotissement"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item := models.Bloc{
		Name:          p.Name,
		LotissementID: p.LotissementID,
		Description:   p.Description,
		Geometry:      p.Geometry,
		Superficie:    p.Superficie,
		Perimetre:     p.Perimetre,
	}
	if err := h.db.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *BlocHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionUpdate, policy.ResourceBloc) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Bloc
	if err := h.db.First(&item, id).Error; err != nil {
		notFound(w)
		return
	}
	var p blocParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{}
	if p.Name != "" {
		updates["name"] = p.Name
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
			httpx.JSONError(w, http.StatusBadRequest, "update_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Delete removes the bloc; its parcelles cascade at the storage layer.
func (h *BlocHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionDelete, policy.ResourceBloc) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var item models.Bloc
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

type blocStats struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	NombreParcelles int64  `json:"nombre_parcelles"`
}

func (h *BlocHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var rows []blocStats
	err := h.db.Model(&models.Bloc{}).
		Select("blocs.id, blocs.name, count(parcelles.id) as nombre_parcelles").
		Joins("LEFT JOIN parcelles ON parcelles.bloc_id = blocs.id").
		Group("blocs.id, blocs.name").
		Order("blocs.name").
		Scan(&rows).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
