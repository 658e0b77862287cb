package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// DossierField is one labelled line of a dossier.
type DossierField struct {
	Label string
	Value string
}

// DossierSection groups dossier fields under a heading.
type DossierSection struct {
	Heading string
	Fields  []DossierField
}

// Dossier is a single-record report.
type Dossier struct {
	Title    string
	Subtitle string
	Sections []DossierSection
	Footer   string
}

// PDFExporter renders datasets into tabular PDFs and single-record dossiers.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Wide tables switch to
// landscape and long cells are clipped to the column width.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation, width := "P", 190.0
	if len(data.Headers) > 6 {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := width / float64(len(data.Headers))
	pdf.SetFont("Arial", "B", 8)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, clip(pdf, header, colWidth), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 6, clip(pdf, row[header], colWidth), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderDossier lays a single record out as labelled sections.
func (e *PDFExporter) RenderDossier(d Dossier) ([]byte, error) {
	if len(d.Sections) == 0 {
		return nil, fmt.Errorf("dossier requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(185, 28, 28)
	pdf.CellFormat(0, 10, d.Title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	if d.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, d.Subtitle, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range d.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(243, 244, 246)
		pdf.CellFormat(0, 8, strings.ToUpper(section.Heading), "", 1, "L", true, 0, "")
		pdf.Ln(1)
		for _, field := range section.Fields {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(55, 6, field.Label, "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			value := field.Value
			if value == "" {
				value = "-"
			}
			pdf.MultiCell(0, 6, value, "", "L", false)
		}
		pdf.Ln(3)
	}

	if d.Footer != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 6, d.Footer, "T", 1, "C", false, 0, "")
	}

	return output(pdf)
}

func clip(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
