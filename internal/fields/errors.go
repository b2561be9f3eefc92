package fields

import "errors"

// ErrMissingColumn is returned when a required logical field has no matching
// header column.
var ErrMissingColumn = errors.New("required column not found")
