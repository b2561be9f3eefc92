package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"codeberg.org/snonux/ordertrans/internal/config"
	"codeberg.org/snonux/ordertrans/internal/journal"
	"codeberg.org/snonux/ordertrans/internal/processor"
	"codeberg.org/snonux/ordertrans/internal/sheets"
	"codeberg.org/snonux/ordertrans/internal/sheets/google"
	"codeberg.org/snonux/ordertrans/internal/sheets/xlsx"
	"codeberg.org/snonux/ordertrans/internal/translation"
)

// NewBackend builds the configured translation backend. A fallback provider
// that cannot be built is logged and left out.
func NewBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (translation.Backend, error) {
	primary, err := translation.New(ctx, cfg.Translation.Provider, cfg.BackendConfig())
	if err != nil {
		return nil, fmt.Errorf("translation provider %s: %w", cfg.Translation.Provider, err)
	}

	fb := cfg.Translation.FallbackProvider
	if fb == "" || fb == cfg.Translation.Provider {
		return primary, nil
	}
	fallback, err := translation.New(ctx, fb, cfg.BackendConfig())
	if err != nil {
		logger.Warn("fallback translation provider unavailable", zap.String("provider", fb), zap.Error(err))
		return primary, nil
	}
	return translation.NewFallbackBackend(primary, fallback, logger), nil
}

// OpenSpreadsheet opens the configured spreadsheet backend. The returned
// function releases it.
func OpenSpreadsheet(ctx context.Context, cfg config.Config) (sheets.Spreadsheet, func() error, error) {
	switch cfg.Sheets.Backend {
	case config.BackendXLSX:
		wb, err := xlsx.Open(cfg.Sheets.XLSXPath)
		if err != nil {
			return nil, nil, err
		}
		return wb, wb.Close, nil
	default:
		book, err := google.New(ctx, cfg.App.SpreadsheetID, cfg.GoogleCredentials)
		if err != nil {
			return nil, nil, err
		}
		return book, func() error { return nil }, nil
	}
}

// ProcessorOptions maps the configuration onto the pipeline options
func ProcessorOptions(cfg config.Config) processor.Options {
	return processor.Options{
		SourceSheet: cfg.App.SourceSheet,
		TargetSheet: cfg.App.TargetSheet,
		Limits:      cfg.Limits(),
		Translation: cfg.TranslationOptions(),
		BatchSize:   cfg.Writer.BatchSize,
		WritePause:  cfg.Writer.Pause,
	}
}

// PrintResult writes the run summary
func PrintResult(w io.Writer, res processor.Result) {
	fmt.Fprintf(w, "\n=== Translation Run Summary ===\n")
	if res.Success {
		fmt.Fprintf(w, "✓ %s\n", res.Message)
	} else {
		fmt.Fprintf(w, "✗ %s\n", res.Message)
	}
	fmt.Fprintf(w, "State: %s\n", res.State)
	fmt.Fprintf(w, "Orders found: %d\n", res.Found)
	fmt.Fprintf(w, "Orders processed: %d\n", res.Processed)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, "Rows skipped: %d\n", len(res.Skipped))
	}
	if len(res.Dropped) > 0 {
		fmt.Fprintf(w, "Orders dropped: %d\n", len(res.Dropped))
	}
	if res.TranslationFailures > 0 {
		fmt.Fprintf(w, "Translation failures: %d (marked in the sheet)\n", res.TranslationFailures)
	}
	fmt.Fprintf(w, "Tokens used: %d\n", res.Usage.TokensUsed)
	fmt.Fprintf(w, "Estimated cost: $%.4f (monthly budget $%.2f)\n", res.Usage.EstimatedCost, res.Usage.MonthlyBudget)
	fmt.Fprintf(w, "Daily order limit: %d\n", res.Usage.MaxDailyOrders)
	fmt.Fprintf(w, "===============================\n")
}

// PrintHistory writes runs as a table, newest first
func PrintHistory(w io.Writer, runs []journal.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tCUTOFF\tSTATE\tFOUND\tPROCESSED\tTOKENS\tCOST\tMESSAGE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t$%.4f\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Cutoff.Format("2006-01-02"),
			r.State,
			r.OrdersFound,
			r.OrdersProcessed,
			r.TokensUsed,
			r.EstimatedCost,
			r.Message)
	}
	return tw.Flush()
}
