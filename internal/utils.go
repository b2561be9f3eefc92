package internal

import (
	"strings"
	"unicode/utf8"
)

// ColumnLetter converts a 1-based column number to its A1 letters
// (1 -> A, 26 -> Z, 27 -> AA). Non-positive input yields "".
func ColumnLetter(n int) string {
	result := ""
	for n > 0 {
		n--
		result = string(rune('A'+n%26)) + result
		n /= 26
	}
	return result
}

// SanitizeSheetTitle replaces characters that spreadsheet applications reject
// in worksheet titles and truncates the result to max runes.
func SanitizeSheetTitle(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if isForbiddenTitleRune(r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	result := b.String()
	if max > 0 && utf8.RuneCountInString(result) > max {
		result = string([]rune(result)[:max])
	}
	return result
}

func isForbiddenTitleRune(r rune) bool {
	switch r {
	case '[', ']', ':', '*', '?', '/', '\\':
		return true
	}
	return false
}
