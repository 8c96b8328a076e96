package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	booksSheet      = "Books"
	wishlistSheet   = "Wishlist"
	categoriesSheet = "Categories"
	columnWidth     = 20
	headerFill      = "D7E4BC"
)

var (
	booksHeader      = []any{"User name", "Book title", "Author", "Publication year", "Category", "Category description"}
	wishlistHeader   = []any{"User name", "Book title", "Author", "Added"}
	categoriesHeader = []any{"User name", "Category name", "Category description", "Created"}
)

// rowValuer is a report row that yields its cells in column order.
type rowValuer interface {
	Values() []any
}

// WriteXLSX renders one sheet per non-empty section. An empty report has
// nothing to render and fails with ErrEmptyReport.
func (r *Report) WriteXLSX(w io.Writer) error {
	f, err := r.workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveXLSX writes the workbook into dir under FileName(now) and returns the
// path written.
func (r *Report) SaveXLSX(dir string, now time.Time) (string, error) {
	f, err := r.workbook()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, r.FileName(now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func (r *Report) workbook() (*excelize.File, error) {
	if r.Empty() {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if len(r.Books) > 0 {
		err = writeSheet(f, booksSheet, booksHeader, rows(r.Books), header)
	}
	if err == nil && len(r.Wishlist) > 0 {
		err = writeSheet(f, wishlistSheet, wishlistHeader, rows(r.Wishlist), header)
	}
	if err == nil && len(r.Categories) > 0 {
		err = writeSheet(f, categoriesSheet, categoriesHeader, rows(r.Categories), header)
	}
	if err == nil {
		err = f.DeleteSheet("Sheet1")
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func rows[T rowValuer](items []T) [][]any {
	out := make([][]any, len(items))
	for i, item := range items {
		out[i] = item.Values()
	}
	return out
}

func writeSheet(f *excelize.File, name string, header []any, data [][]any, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", name, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(name, "A", lastCol, columnWidth); err != nil {
		return fmt.Errorf("size %s columns: %w", name, err)
	}

	for i, values := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := blankZeroes(values)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// blankZeroes replaces unknown years and dates with empty cells.
func blankZeroes(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case int:
			if x == 0 {
				v = ""
			}
		case time.Time:
			if x.IsZero() {
				v = ""
			}
		}
		out[i] = v
	}
	return out
}
