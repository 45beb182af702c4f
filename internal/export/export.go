package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/models"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Report is the data written by an export.
type Report struct {
	Tasks []models.Task
	Stats models.Stats
	Now   time.Time
}

// ContentType returns the MIME type for format, or an error for unknown formats.
func ContentType(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return "application/json", nil
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatPDF:
		return "application/pdf", nil
	default:
		return "", fmt.Errorf("unknown format %s", format)
	}
}

// Write renders the report to w in the given format.
func Write(w io.Writer, format string, r Report) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats models.Stats  `json:"stats"`
			Tasks []models.Task `json:"tasks"`
		}{r.Stats, r.Tasks})
	case FormatCSV:
		return writeCSV(w, r)
	case FormatPDF:
		return writePDF(w, r)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "title", "description", "category", "priority", "deadline", "deadline_label", "completed", "created_date"})
	for _, t := range r.Tasks {
		_ = cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			t.Category,
			string(t.Priority),
			string(t.Deadline),
			models.RelativeLabel(t.Deadline, r.Now),
			strconv.FormatBool(t.Completed),
			string(t.CreatedDate),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %d tasks, %d completed, %d pending (%d%%)",
		r.Now.Format("Jan 2, 2006"), r.Stats.Total, r.Stats.Completed, r.Stats.Pending, r.Stats.CompletionRate))
	pdf.Ln(10)

	// The core fonts only cover Latin-1.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, t := range r.Tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", mark, t.Title)), "0", "L", false)

		pdf.SetFont("Arial", "", 9)
		line := fmt.Sprintf("%s | %s | due %s (%s)", t.Category, t.Priority, t.Deadline, models.RelativeLabel(t.Deadline, r.Now))
		if models.IsUrgent(t, r.Now) {
			line += " | URGENT"
		}
		pdf.MultiCell(0, 5, tr(line), "0", "L", false)
		if t.Description != "" {
			pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		}
		pdf.Ln(2)
	}

	return pdf.Output(w)
}
