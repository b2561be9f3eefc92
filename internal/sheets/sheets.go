package sheets

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/snonux/ordertrans/internal"
)

// Worksheet is a single tab of a spreadsheet.
type Worksheet interface {
	Title() string

	// Values returns every row. Rows are padded to the same width.
	Values(ctx context.Context) ([][]string, error)

	// Update writes rows starting at the top-left corner of rng.
	Update(ctx context.Context, rng Range, rows [][]string) error

	Clear(ctx context.Context) error

	Format(ctx context.Context, rng Range, f Format) error
}

// Spreadsheet is a collection of worksheets.
type Spreadsheet interface {
	// Worksheet returns ErrWorksheetNotFound when no tab has this title.
	Worksheet(ctx context.Context, title string) (Worksheet, error)

	AddWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error)
}

// Format is a formatting directive.
type Format struct {
	Bold bool
	Wrap bool
}

// Range is a rectangle of cells with 1-based inclusive bounds. A zero
// StartRow selects whole columns.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Rows covers rows first..last across columns 1..cols.
func Rows(first, last, cols int) Range {
	return Range{StartRow: first, StartCol: 1, EndRow: last, EndCol: cols}
}

// Column covers a whole column.
func Column(col int) Range {
	return Range{StartCol: col, EndCol: col}
}

// WholeColumns reports whether the range spans entire columns.
func (r Range) WholeColumns() bool {
	return r.StartRow == 0
}

// A1 renders the range in A1 notation, e.g. "A2:E21" or "D:D".
func (r Range) A1() string {
	start := internal.ColumnLetter(r.StartCol)
	end := internal.ColumnLetter(r.EndCol)
	if r.WholeColumns() {
		return fmt.Sprintf("%s:%s", start, end)
	}
	return fmt.Sprintf("%s%d:%s%d", start, r.StartRow, end, r.EndRow)
}

// Open returns the worksheet with title, adding it with the given size when
// it does not exist yet.
func Open(ctx context.Context, book Spreadsheet, title string, rows, cols int) (Worksheet, bool, error) {
	ws, err := book.Worksheet(ctx, title)
	if err == nil {
		return ws, false, nil
	}
	if !errors.Is(err, ErrWorksheetNotFound) {
		return nil, false, err
	}
	ws, err = book.AddWorksheet(ctx, title, rows, cols)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add worksheet %q: %w", title, err)
	}
	return ws, true, nil
}

// Pad extends every row to the width of the widest row.
func Pad(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}
