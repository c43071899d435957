// Package xlsxexport renders extracted objects as an Excel workbook for
// downstream takeoff and review workflows.
package xlsxexport

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"plansift/internal/domain"
)

const sheetName = "Objects"

// columns defines the header row.
var columns = []string{
	"Object ID",
	"Type",
	"Label",
	"Name",
	"Number",
	"Page",
	"PDF",
	"X",
	"Y",
	"Width",
	"Height",
	"Confidence",
	"Confidence Level",
	"Provenance",
	"Run ID",
	"Created At",
}

// Writer builds an xlsx workbook from extracted objects.
type Writer struct {
	file *excelize.File
	row  int
}

// NewWriter creates a Writer with the header row already in place.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsxexport.NewWriter: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsxexport.NewWriter: %w", err)
	}

	return &Writer{file: f, row: 2}, nil
}

// WriteObjects appends one row per object.
func (w *Writer) WriteObjects(objects []domain.ExtractedObject) error {
	for i := range objects {
		row := objectToRow(&objects[i])
		cell, err := excelize.CoordinatesToCellName(1, w.row)
		if err != nil {
			return fmt.Errorf("xlsxexport.WriteObjects: %w", err)
		}
		if err := w.file.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsxexport.WriteObjects: %w", err)
		}
		w.row++
	}
	return nil
}

// Flush writes the finished workbook to out and releases the file.
func (w *Writer) Flush(out io.Writer) error {
	defer func() { _ = w.file.Close() }()
	if err := w.file.Write(out); err != nil {
		return fmt.Errorf("xlsxexport.Flush: %w", err)
	}
	return nil
}

func objectToRow(obj *domain.ExtractedObject) []interface{} {
	return []interface{}{
		obj.ID,
		string(obj.Type),
		obj.Label,
		obj.Name,
		obj.Number,
		obj.Page.PageID,
		obj.Page.PDFID,
		obj.BBox.X,
		obj.BBox.Y,
		obj.BBox.W,
		obj.BBox.H,
		obj.Confidence,
		string(obj.ConfidenceLevel()),
		strings.Join(obj.Provenance, "; "),
		obj.RunID.String(),
		obj.CreatedAt.Format(time.RFC3339),
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a project name for use in a filename. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized export filename.
// Format: {sanitized_project_name}_{YYYY-MM-DD}.xlsx
func BuildFilename(projectName string) string {
	sanitized := SanitizeFilename(projectName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.xlsx", sanitized, date)
}
