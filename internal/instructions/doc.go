// Package instructions renders the underwriting instruction block written to
// the destination sheet from the translated call content and review advice.
package instructions
