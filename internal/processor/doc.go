// Package processor runs the order translation pipeline. It reads the source
// worksheet, resolves and filters the review rows, enforces the daily order
// cap, translates each order field by field, and hands the processed records
// to the batch writer. Every outcome is reported as a Result; a run never
// returns an error to its caller.
package processor
