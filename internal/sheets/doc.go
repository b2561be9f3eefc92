// Package sheets defines the minimal spreadsheet contract the pipeline
// depends on: read all values, write a rectangular block, clear, look up or
// add a worksheet, and apply bold or wrap formatting. Backends live in the
// google and xlsx subpackages.
package sheets
