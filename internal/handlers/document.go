package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	db   *gorm.DB
	gate *gate.Gate[*models.User]
}

func NewDocumentHandler(db *gorm.DB, g *gate.Gate[*models.User]) *DocumentHandler {
	return &DocumentHandler{db: db, gate: g}
}

// ByParcelle returns the document attached to a parcelle.
// 400 when parcelle_id is missing, 404 when nothing is attached.
func (h *DocumentHandler) ByParcelle(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("parcelle_id")
	if raw == "" {
		httpx.JSONError(w, http.StatusBadRequest, "parcelle_id is required", nil)
		return
	}
	parcelleID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "parcelle_id must be a number", nil)
		return
	}
	var doc models.Document
	if err := h.db.Where("parcelle_id = ?", uint(parcelleID)).First(&doc).Error; err != nil {
		notFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type documentParams struct {
	ParcelleID uint   `json:"parcelle_id"`
	Document   string `json:"document"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionCreate, policy.ResourceDocument) {
		return
	}
	var p documentParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("document", p.Document, v)
	if p.ParcelleID == 0 {
		v["parcelle_id"] = "required"
	} else {
		var count int64
		if err := h.db.Model(&models.Parcelle{}).Where("id = ?", p.ParcelleID).Count(&count).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
			return
		}
		if count == 0 {
			v["parcelle_id"] = "unknown_parcelle"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	doc := models.Document{ParcelleID: p.ParcelleID, Document: p.Document}
	if err := h.db.Create(&doc).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionDelete, policy.ResourceDocument) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var doc models.Document
	if err := h.db.First(&doc, id).Error; err != nil {
		notFound(w)
		return
	}
	if err := h.db.Delete(&doc).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
