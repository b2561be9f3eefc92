// Package archive snapshots the destination worksheet before it is
// overwritten by the next run.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"codeberg.org/snonux/ordertrans/internal"
	"codeberg.org/snonux/ordertrans/internal/sheets"
)

// TimestampLayout is appended to the archived worksheet title.
const TimestampLayout = "20060102-150405"

// MaxTitleLength fits both Google Sheets and xlsx worksheet title limits.
const MaxTitleLength = 31

// ErrNothingToArchive is returned for a missing or empty worksheet.
var ErrNothingToArchive = errors.New("nothing to archive")

// Title returns the archive worksheet title for title at t.
func Title(title string, t time.Time) string {
	suffix := "-" + t.Format(TimestampLayout)
	return internal.SanitizeSheetTitle(title, MaxTitleLength-utf8.RuneCountInString(suffix)) + suffix
}

// ArchiveSheet copies the values of worksheet title into a new timestamped
// worksheet of the same spreadsheet and returns the new title.
func ArchiveSheet(ctx context.Context, book sheets.Spreadsheet, title string, now time.Time) (string, error) {
	src, err := book.Worksheet(ctx, title)
	if errors.Is(err, sheets.ErrWorksheetNotFound) {
		return "", fmt.Errorf("%w: worksheet %q does not exist", ErrNothingToArchive, title)
	}
	if err != nil {
		return "", err
	}

	values, err := src.Values(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", title, err)
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return "", fmt.Errorf("%w: worksheet %q is empty", ErrNothingToArchive, title)
	}

	archiveTitle := Title(title, now)
	if _, err := book.Worksheet(ctx, archiveTitle); err == nil {
		return "", fmt.Errorf("archive worksheet %q already exists", archiveTitle)
	}

	cols := len(values[0])
	dst, err := book.AddWorksheet(ctx, archiveTitle, len(values), cols)
	if err != nil {
		return "", err
	}
	if err := dst.Update(ctx, sheets.Rows(1, len(values), cols), values); err != nil {
		return "", fmt.Errorf("failed to copy %q: %w", title, err)
	}
	if err := dst.Format(ctx, sheets.Rows(1, 1, cols), sheets.Format{Bold: true}); err != nil {
		return "", fmt.Errorf("failed to format %q: %w", archiveTitle, err)
	}

	return archiveTitle, nil
}
