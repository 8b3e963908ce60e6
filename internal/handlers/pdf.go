package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/pdf"
)

// PDFHandler exposes the generic report generator: a request names one of
// the three variants and carries variant-specific data.
type PDFHandler struct {
	pdf *pdf.Service
}

func NewPDFHandler(svc *pdf.Service) *PDFHandler { return &PDFHandler{pdf: svc} }

type pdfRequest struct {
	Type string `json:"type"`
	Data struct {
		Content  string           `json:"content"`
		Template string           `json:"template"`
		Context  map[string]any   `json:"context"`
		Rows     []map[string]any `json:"rows"`
		Title    string           `json:"title"`
	} `json:"data"`
}

func (h *PDFHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	var data []byte
	var err error
	switch req.Type {
	case "simple":
		if req.Data.Content == "" {
			httpx.JSONError(w, http.StatusBadRequest, "content is required for simple PDF generation", nil)
			return
		}
		data, err = h.pdf.Simple(req.Data.Content)
	case "template":
		if req.Data.Template == "" || req.Data.Context == nil {
			httpx.JSONError(w, http.StatusBadRequest, "template and context are required for template PDF generation", nil)
			return
		}
		data, err = h.pdf.Template(req.Data.Template, req.Data.Context)
	case "table":
		if len(req.Data.Rows) == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "rows are required for table PDF generation", nil)
			return
		}
		data, err = h.pdf.Table(req.Data.Rows, req.Data.Title)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid PDF type", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}
	httpx.PDF(w, "generated_pdf.pdf", data)
}
