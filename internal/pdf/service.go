// Package pdf renders the report variants exposed by the export endpoints:
// a one-off simple document, a templated document, and a tabular report.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/go-pdf/fpdf"
)

type Service struct{}

func NewService() *Service { return &Service{} }

func newDoc() *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	return doc
}

func render(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Simple produces a minimal document with a fixed header and one content line.
func (s *Service) Simple(content string) ([]byte, error) {
	doc := newDoc()
	doc.Cell(0, 8, "Document Genere")
	doc.Ln(10)
	doc.MultiCell(0, 6, content, "", "L", false)
	return render(doc)
}

// Template renders a text/template source with the given context and lays
// the result out line by line.
func (s *Service) Template(src string, context map[string]any) ([]byte, error) {
	tmpl, err := template.New("report").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, context); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	doc := newDoc()
	for _, line := range strings.Split(out.String(), "\n") {
		doc.MultiCell(0, 6, line, "", "L", false)
	}
	return render(doc)
}

// Table produces a titled tabular report. Column order follows the sorted
// keys of the first row so output is deterministic.
func (s *Service) Table(rows []map[string]any, title string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table report needs at least one row")
	}
	if title == "" {
		title = "Rapport des Parcelles"
	}

	keys := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := newDoc()
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	doc.Ln(2)

	colW := 190.0 / float64(len(keys))
	doc.SetFont("Helvetica", "B", 10)
	for _, k := range keys {
		doc.CellFormat(colW, 7, k, "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for _, k := range keys {
			doc.CellFormat(colW, 7, fmt.Sprint(row[k]), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	return render(doc)
}

// ParcelleReport renders the owner-facing attestation for one parcelle.
func (s *Service) ParcelleReport(p *models.Parcelle, owner *models.User) ([]byte, error) {
	doc := newDoc()
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, "Attestation de Parcelle", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Parcelle no %d", p.ID),
		fmt.Sprintf("Bloc: %d", p.BlocID),
		fmt.Sprintf("Superficie: %.2f m2", p.Superficie),
		fmt.Sprintf("Perimetre: %.2f m", p.Perimetre),
	}
	if owner != nil {
		lines = append(lines,
			fmt.Sprintf("Proprietaire: %s", owner.Email),
			fmt.Sprintf("ID cadastrale: %s", owner.IDCadastrale),
		)
	}
	for _, line := range lines {
		doc.Cell(0, 8, line)
		doc.Ln(8)
	}
	return render(doc)
}
