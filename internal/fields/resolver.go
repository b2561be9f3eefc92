package fields

import (
	"fmt"
	"strings"
)

// Key identifies a logical field independently of the literal header text.
type Key string

const (
	Date          Key = "date"
	OrderID       Key = "order_id"
	NeedCall      Key = "need_call"
	ReviewDetails Key = "review_details"
	CallContent   Key = "call_content"
	ReviewAdvice  Key = "review_advice"
)

// Keys lists every logical field in resolution order.
var Keys = []Key{Date, OrderID, NeedCall, ReviewDetails, CallContent, ReviewAdvice}

// Required lists the fields without which a run cannot start.
var Required = []Key{Date, OrderID}

// Synonyms holds the accepted header strings per field, highest priority first.
var Synonyms = map[Key][]string{
	Date:          {"审核日期", "日期", "Review Date", "Date"},
	OrderID:       {"订单编号", "订单号", "Order ID", "Order No"},
	NeedCall:      {"是否需要电核", "需要电核", "Need Call"},
	ReviewDetails: {"审核详情", "Review Details"},
	CallContent:   {"需要电核的内容", "电核内容", "Call Content"},
	ReviewAdvice:  {"信审审核意见", "审核意见", "Review Advice"},
}

// Unresolved marks a field that matched no header column.
const Unresolved = -1

// Resolution maps each logical field to a column index or Unresolved.
type Resolution map[Key]int

// Resolve matches every logical field against the header row. Candidates are
// tried in priority order and the first exact match wins; when a header name
// appears more than once the lowest column index is used.
func Resolve(header []string) Resolution {
	return ResolveWith(header, Synonyms)
}

// ResolveWith resolves header against a caller supplied synonym table.
func ResolveWith(header []string, synonyms map[Key][]string) Resolution {
	res := make(Resolution, len(Keys))
	for _, key := range Keys {
		res[key] = Unresolved
		for _, candidate := range synonyms[key] {
			if idx := indexOf(header, candidate); idx != Unresolved {
				res[key] = idx
				break
			}
		}
	}
	return res
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return Unresolved
}

// Index returns the column of key, or Unresolved.
func (r Resolution) Index(key Key) int {
	idx, ok := r[key]
	if !ok {
		return Unresolved
	}
	return idx
}

// Missing returns the required keys that did not resolve.
func (r Resolution) Missing(required []Key) []Key {
	var missing []Key
	for _, key := range required {
		if r.Index(key) == Unresolved {
			missing = append(missing, key)
		}
	}
	return missing
}

// Validate reports ErrMissingColumn naming the preferred header text of every
// unresolved required field.
func (r Resolution) Validate(required []Key) error {
	missing := r.Missing(required)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, key := range missing {
		names = append(names, ColumnName(key))
	}
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, ", "))
}

// MaxIndex is the highest resolved column index, or Unresolved if nothing resolved.
func (r Resolution) MaxIndex() int {
	highest := Unresolved
	for _, idx := range r {
		if idx > highest {
			highest = idx
		}
	}
	return highest
}

// ColumnName returns the preferred header text for key.
func ColumnName(key Key) string {
	if names := Synonyms[key]; len(names) > 0 {
		return names[0]
	}
	return string(key)
}
