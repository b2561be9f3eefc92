package sheets

import "errors"

// ErrWorksheetNotFound is returned by Spreadsheet.Worksheet for an unknown title.
var ErrWorksheetNotFound = errors.New("worksheet not found")
