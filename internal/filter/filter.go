package filter

import (
	"time"

	"codeberg.org/snonux/ordertrans/internal/dates"
	"codeberg.org/snonux/ordertrans/internal/fields"
)

// Reason explains why a row was left out.
type Reason string

const (
	Malformed    Reason = "row does not cover all resolved columns"
	BadDate      Reason = "unparseable date"
	BeforeCutoff Reason = "date before cutoff"
)

// Skip records a row that did not pass the filter.
type Skip struct {
	Row    int
	Reason Reason
	Value  string
}

// Apply walks rows (header excluded) in order and returns the orders dated on
// or after cutoff, plus a Skip for every other row. rows are not modified.
// Row numbers count the header as row 1.
func Apply(rows [][]string, res fields.Resolution, cutoff time.Time) ([]fields.Order, []Skip) {
	var (
		orders []fields.Order
		skips  []Skip
	)

	for i, row := range rows {
		rowNumber := i + 2

		if !res.Covers(row) {
			skips = append(skips, Skip{Row: rowNumber, Reason: Malformed})
			continue
		}

		raw := res.Cell(row, fields.Date)
		date, ok := dates.Parse(raw)
		if !ok {
			skips = append(skips, Skip{Row: rowNumber, Reason: BadDate, Value: raw})
			continue
		}

		if !dates.OnOrAfter(date, cutoff) {
			skips = append(skips, Skip{Row: rowNumber, Reason: BeforeCutoff, Value: raw})
			continue
		}

		order := res.Read(rowNumber, row)
		order.Date = date
		orders = append(orders, order)
	}

	return orders, skips
}
