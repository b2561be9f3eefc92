// Package filter selects the source rows whose review date falls on or after
// a cutoff day.
package filter
