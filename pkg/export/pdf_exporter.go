package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and worksheet documents into PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WorksheetDocument describes a printable worksheet.
type WorksheetDocument struct {
	Title             string
	Subtitle          string
	LearningIntention string
	SuccessCriteria   []string
	Questions         []WorksheetQuestionLine
}

// WorksheetQuestionLine is one numbered question with optional hints.
type WorksheetQuestionLine struct {
	Number int
	Text   string
	Hints  string
}

// RenderWorksheet lays out a worksheet document as an A4 PDF.
func (e *PDFExporter) RenderWorksheet(doc WorksheetDocument) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("worksheet requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 7, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if doc.LearningIntention != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Learning Intention", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, doc.LearningIntention, "", "", false)
		pdf.Ln(2)
	}

	if len(doc.SuccessCriteria) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Success Criteria", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, sc := range doc.SuccessCriteria {
			pdf.MultiCell(0, 6, "- "+sc, "", "", false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Questions", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, q := range doc.Questions {
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", q.Number, q.Text), "", "", false)
		if q.Hints != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, "Hint: "+q.Hints, "", "", false)
			pdf.SetFont("Arial", "", 10)
		}
		pdf.Ln(8)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render worksheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}
