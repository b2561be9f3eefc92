// Package fields maps the loosely named header row of the review sheet onto
// a fixed set of logical fields and reads source rows through that mapping
// into typed order records.
package fields
