package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/stats"
)

// Report is everything that goes into the PDF.
type Report struct {
	Title      string
	Generated  time.Time
	Table      Table
	Statistics roster.Statistics
}

// RenderPDF lays out a landscape A4 document: a title line, the statistics
// summary, then the roster table.
func RenderPDF(r Report) ([]byte, error) {
	if len(r.Table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if r.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	}
	if !r.Generated.IsZero() {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+r.Generated.Format(time.RFC1123), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total students: %d", r.Statistics.TotalStudents), "", 1, "", false, 0, "")
	summarize(pdf, tr, "By gender", stats.Gender(r.Statistics))
	summarize(pdf, tr, "By batch year", stats.BatchYear(r.Statistics))
	pdf.Ln(4)

	const usable = 277.0
	colWidth := usable / float64(len(r.Table.Headers))

	pdf.SetFont("Arial", "B", 9)
	for _, header := range r.Table.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range r.Table.Rows {
		for i := range r.Table.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func summarize(pdf *gofpdf.Fpdf, tr func(string) string, heading string, s stats.Series) {
	pdf.SetFont("Arial", "", 9)
	if s.Empty() {
		pdf.CellFormat(0, 5, heading+": no data", "", 1, "", false, 0, "")
		return
	}
	line := heading + ":"
	for i := 0; i < s.Len(); i++ {
		line += fmt.Sprintf("  %s %d (%.0f%%)", s.Label(i), s.Values[i], s.Share(i)*100)
	}
	pdf.CellFormat(0, 5, tr(line), "", 1, "", false, 0, "")
}
