// Package dates parses the date cells of the review sheet, which arrive in
// several formats depending on who filled the row.
package dates
