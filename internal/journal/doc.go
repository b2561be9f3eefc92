// Package journal keeps a SQLite ledger of pipeline run outcomes. It backs
// the run history listing and the daily token advisory.
package journal
