// Package usage tracks orders processed and tokens consumed during one run
// and converts them to an estimated cost checked against configured limits.
package usage
