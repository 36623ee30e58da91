package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"guestlist/internal/models"
)

// PDF renders the event as a printable report: header band, stats summary,
// guest table.
func PDF(event models.Event, stats models.Stats) ([]byte, error) {
	if len(event.Guests) == 0 {
		return nil, errEmpty
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(0, 0, 0)
	pdf.Rect(0, 0, 210, 35, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.Text(20, 20, event.Name)
	pdf.SetFont("Arial", "", 11)
	if event.Date != "" {
		pdf.Text(20, 28, "Event date: "+formatDate(event.Date))
	} else {
		pdf.Text(20, 28, "Guest list report")
	}

	// Stats summary
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(45)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "STATISTICS")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	summary := fmt.Sprintf("Total: %d    Confirmed: %d    Declined: %d    Pending: %d",
		stats.Total, stats.Yes, stats.No, stats.Pending)
	pdf.Cell(0, 7, summary)
	pdf.Ln(12)

	// Guest table
	headers := append([]string{"#", "Status"}, event.Columns...)
	width := 180.0 / float64(len(headers))
	widths := make([]float64, len(headers))
	for i := range widths {
		widths[i] = width
	}
	widths[0] = 12
	if len(widths) > 1 {
		widths[1] = 25
	}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i, g := range event.Guests {
		values := []string{strconv.Itoa(i + 1), statusLabel(g.Status)}
		for _, col := range event.Columns {
			values = append(values, g.Field(col))
		}
		for j, v := range values {
			pdf.CellFormat(widths[j], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX renders the event as a spreadsheet: one row per guest, a Status
// column, and a stats block below the table.
func XLSX(event models.Event, stats models.Stats) ([]byte, error) {
	if len(event.Guests) == 0 {
		return nil, errEmpty
	}

	f := excelize.NewFile()
	sheet := "Guests"
	f.SetSheetName("Sheet1", sheet)

	headers := append(append([]string{}, event.Columns...), "Status")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, g := range event.Guests {
		for c, col := range event.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, g.Field(col))
		}
		cell, _ := excelize.CoordinatesToCellName(len(event.Columns)+1, r+2)
		f.SetCellValue(sheet, cell, statusLabel(g.Status))
	}

	statsRow := len(event.Guests) + 3
	lines := []string{
		fmt.Sprintf("Total: %d", stats.Total),
		fmt.Sprintf("Confirmed: %d", stats.Yes),
		fmt.Sprintf("Declined: %d", stats.No),
		fmt.Sprintf("Pending: %d", stats.Pending),
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, statsRow+i)
		f.SetCellValue(sheet, cell, line)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename sanitizes an event name into a safe export file name.
func Filename(name, ext string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == ' ':
			out = append(out, '_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			out = append(out, r)
		}
	}
	if len(out) > 50 {
		out = out[:50]
	}
	if len(out) == 0 {
		out = []rune("event")
	}
	return string(out) + "." + ext
}
