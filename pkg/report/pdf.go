// Package report renders task lists as printable documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskdesk/pkg/task"
)

const dateLayout = "2006-01-02"

var columns = []struct {
	title string
	width float64
}{
	{"Title", 78},
	{"Priority", 22},
	{"Status", 26},
	{"Due", 26},
	{"Created", 28},
}

// WritePDF writes an A4 report of tasks, headed by the counts summary.
func WritePDF(w io.Writer, tasks []task.Task, counts task.Counts, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task Report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Task Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d   Active: %d   Completed: %d", counts.Total, counts.Active, counts.Completed))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if len(tasks) == 0 {
		pdf.CellFormat(0, 7, "No tasks", "1", 1, "C", false, 0, "")
	}
	for _, t := range tasks {
		row := []string{
			tr(truncate(t.Title, 48)),
			string(t.Priority),
			status(t),
			due(t),
			t.CreatedAt.UTC().Format(dateLayout),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, row[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func status(t task.Task) string {
	if t.Completed {
		return "Completed"
	}
	return "Active"
}

func due(t task.Task) string {
	if t.DueDate == nil {
		return "-"
	}
	return t.DueDate.UTC().Format(dateLayout)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
