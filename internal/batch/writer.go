package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/ordertrans/internal/sheets"
)

// Header is the first row of the destination sheet.
var Header = []string{"Review Date", "Order ID", "Review Details", "UW Instructions", "Processing Date"}

// InstructionsColumn is the 1-based column that gets text wrapping.
const InstructionsColumn = 4

// DefaultSize is the number of records written per call.
const DefaultSize = 20

// Record is one processed order as written to the destination sheet.
type Record struct {
	ReviewDate     string
	OrderID        string
	ReviewDetails  string
	UWInstructions string
	ProcessingDate string
}

// Row returns the record in Header order.
func (r Record) Row() []string {
	return []string{r.ReviewDate, r.OrderID, r.ReviewDetails, r.UWInstructions, r.ProcessingDate}
}

// Writer writes records to one destination worksheet.
type Writer struct {
	title   string
	size    int
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewWriter creates a writer for the worksheet title. pause is the minimum
// spacing between two batch writes, zero disables pacing.
func NewWriter(title string, size int, pause time.Duration, logger *zap.Logger) *Writer {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &Writer{
		title:   title,
		size:    size,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Write clears (or creates) the destination worksheet, writes the header and
// then records in batches. Batches already written stay in place when a
// later one fails.
func (w *Writer) Write(ctx context.Context, book sheets.Spreadsheet, records []Record) (int, error) {
	cols := len(Header)

	ws, created, err := sheets.Open(ctx, book, w.title, len(records)+1, cols)
	if err != nil {
		return 0, fmt.Errorf("failed to open destination sheet: %w", err)
	}
	if !created {
		if err := ws.Clear(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear destination sheet: %w", err)
		}
	}

	if err := ws.Update(ctx, sheets.Rows(1, 1, cols), [][]string{Header}); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	written := 0
	for start := 0; start < len(records); start += w.size {
		end := start + w.size
		if end > len(records) {
			end = len(records)
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return written, err
		}

		rows := make([][]string, 0, end-start)
		for _, r := range records[start:end] {
			rows = append(rows, r.Row())
		}

		first := 2 + written
		rng := sheets.Rows(first, first+len(rows)-1, cols)
		if err := ws.Update(ctx, rng, rows); err != nil {
			return written, fmt.Errorf("failed to write rows %s: %w", rng.A1(), err)
		}
		written += len(rows)

		w.logger.Debug("batch written",
			zap.String("sheet", w.title),
			zap.String("range", rng.A1()),
			zap.Int("written", written),
			zap.Int("total", len(records)))
	}

	if err := ws.Format(ctx, sheets.Rows(1, 1, cols), sheets.Format{Bold: true}); err != nil {
		return written, fmt.Errorf("failed to format header: %w", err)
	}
	if err := ws.Format(ctx, sheets.Column(InstructionsColumn), sheets.Format{Wrap: true}); err != nil {
		return written, fmt.Errorf("failed to format instructions column: %w", err)
	}

	return written, nil
}
