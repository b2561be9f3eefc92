package fields

import (
	"strings"
	"time"
)

// Order is a source row addressed by logical field instead of position.
type Order struct {
	Row           int // 1-based sheet row, header is row 1
	ReviewDate    string
	Date          time.Time
	OrderID       string
	NeedCall      bool
	ReviewDetails string
	CallContent   string
	ReviewAdvice  string
}

// Cell returns the value of key in row, or "" when the field is unresolved or
// the row is too short.
func (r Resolution) Cell(row []string, key Key) string {
	idx := r.Index(key)
	if idx == Unresolved || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Covers reports whether row is long enough to hold every resolved field.
func (r Resolution) Covers(row []string) bool {
	return len(row) > r.MaxIndex()
}

// Read builds an Order from row. The date is left for the caller to parse.
func (r Resolution) Read(rowNumber int, row []string) Order {
	return Order{
		Row:           rowNumber,
		ReviewDate:    r.Cell(row, Date),
		OrderID:       r.Cell(row, OrderID),
		NeedCall:      ParseFlag(r.Cell(row, NeedCall)),
		ReviewDetails: r.Cell(row, ReviewDetails),
		CallContent:   r.Cell(row, CallContent),
		ReviewAdvice:  r.Cell(row, ReviewAdvice),
	}
}

var truthy = map[string]bool{
	"是":    true,
	"需要":   true,
	"y":    true,
	"yes":  true,
	"true": true,
	"1":    true,
}

// ParseFlag interprets a yes/no cell.
func ParseFlag(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}
