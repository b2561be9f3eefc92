package cli

import (
	"fmt"
	"time"

	"codeberg.org/snonux/ordertrans/internal/dates"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Cutoff     string
	DryRun     bool
	Archive    bool
	ListModels bool
	History    int
	ShowConfig bool
	Verbose    bool

	// Backend overrides
	Backend  string
	XLSXPath string
	Provider string
	Model    string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{}
}

// CutoffDate parses the --cutoff value. An empty value means today.
func (f *Flags) CutoffDate(now time.Time) (time.Time, error) {
	if f.Cutoff == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	t, ok := dates.Parse(f.Cutoff)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid cutoff date %q (use YYYY-MM-DD)", f.Cutoff)
	}
	return t, nil
}
