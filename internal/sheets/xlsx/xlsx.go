// Package xlsx implements the spreadsheet contract on a local Excel workbook.
// Every mutating call saves the workbook so a failed run leaves the same
// partial state a remote sheet would.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"codeberg.org/snonux/ordertrans/internal"
	"codeberg.org/snonux/ordertrans/internal/sheets"
)

// Workbook is an .xlsx file on disk.
type Workbook struct {
	path string
	file *excelize.File
}

// Open loads path, or starts an empty workbook when the file does not exist.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
	} else if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// File exposes the underlying workbook.
func (w *Workbook) File() *excelize.File {
	return w.file
}

func (w *Workbook) save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

// Worksheet looks up a tab by title.
func (w *Workbook) Worksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	idx, err := w.file.GetSheetIndex(title)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
	}
	return &worksheet{wb: w, title: title}, nil
}

// AddWorksheet creates a tab. The grid size is ignored, workbooks grow on write.
func (w *Workbook) AddWorksheet(ctx context.Context, title string, rows, cols int) (sheets.Worksheet, error) {
	if _, err := w.file.NewSheet(title); err != nil {
		return nil, fmt.Errorf("failed to add worksheet %s: %w", title, err)
	}
	if err := w.save(); err != nil {
		return nil, err
	}
	return &worksheet{wb: w, title: title}, nil
}

type worksheet struct {
	wb    *Workbook
	title string
}

func (s *worksheet) Title() string {
	return s.title
}

func (s *worksheet) Values(ctx context.Context) ([][]string, error) {
	rows, err := s.wb.file.GetRows(s.title)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.title, err)
	}
	return sheets.Pad(rows), nil
}

func (s *worksheet) Update(ctx context.Context, rng sheets.Range, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(rng.StartCol, rng.StartRow+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := s.wb.file.SetSheetRow(s.title, cell, &values); err != nil {
			return fmt.Errorf("failed to update %s!%s: %w", s.title, cell, err)
		}
	}
	return s.wb.save()
}

// Clear removes every row.
func (s *worksheet) Clear(ctx context.Context) error {
	rows, err := s.wb.file.GetRows(s.title)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.title, err)
	}
	for range rows {
		if err := s.wb.file.RemoveRow(s.title, 1); err != nil {
			return fmt.Errorf("failed to clear %s: %w", s.title, err)
		}
	}
	return s.wb.save()
}

// Format merges f into the style of every cell in rng, so formatting a
// column keeps a bold header bold.
func (s *worksheet) Format(ctx context.Context, rng sheets.Range, f sheets.Format) error {
	firstRow, lastRow := rng.StartRow, rng.EndRow
	if rng.WholeColumns() {
		rows, err := s.wb.file.GetRows(s.title)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.title, err)
		}
		firstRow, lastRow = 1, len(rows)
	}

	styles := make(map[string]int)
	for row := firstRow; row <= lastRow; row++ {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			style, err := s.mergedStyle(cell, f)
			if err != nil {
				return fmt.Errorf("failed to format %s!%s: %w", s.title, cell, err)
			}
			styles[cell] = style
		}
	}

	if rng.WholeColumns() {
		style, err := s.wb.file.NewStyle(apply(&excelize.Style{}, f))
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		first, last := internal.ColumnLetter(rng.StartCol), internal.ColumnLetter(rng.EndCol)
		if err := s.wb.file.SetColStyle(s.title, first+":"+last, style); err != nil {
			return fmt.Errorf("failed to format %s!%s: %w", s.title, rng.A1(), err)
		}
	}

	for cell, style := range styles {
		if err := s.wb.file.SetCellStyle(s.title, cell, cell, style); err != nil {
			return fmt.Errorf("failed to format %s!%s: %w", s.title, cell, err)
		}
	}
	return s.wb.save()
}

func (s *worksheet) mergedStyle(cell string, f sheets.Format) (int, error) {
	id, err := s.wb.file.GetCellStyle(s.title, cell)
	if err != nil {
		return 0, err
	}
	current, err := s.wb.file.GetStyle(id)
	if err != nil {
		return 0, err
	}
	return s.wb.file.NewStyle(apply(current, f))
}

func apply(style *excelize.Style, f sheets.Format) *excelize.Style {
	if style.Font == nil {
		style.Font = &excelize.Font{}
	}
	if style.Alignment == nil {
		style.Alignment = &excelize.Alignment{}
	}
	if f.Bold {
		style.Font.Bold = true
	}
	if f.Wrap {
		style.Alignment.WrapText = true
		style.Alignment.Vertical = "top"
	}
	return style
}
