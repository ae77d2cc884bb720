package config

import (
	"fmt"
	"io"
)

// Diagnostics collects parse and emission problems for one compilation.
// Errors are fatal for the compilation; warnings are reported and ignored.
// Parsing keeps going after an error so a single run reports as many
// problems as possible.
type Diagnostics struct {
	Errors   []string
	Warnings []string
}

// Errorf records a fatal diagnostic.
func (d *Diagnostics) Errorf(format string, args ...interface{}) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Warnf records a non-fatal diagnostic.
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// OK reports whether no fatal diagnostic was recorded.
func (d *Diagnostics) OK() bool { return len(d.Errors) == 0 }

// Report writes all diagnostics to w, errors first.
func (d *Diagnostics) Report(w io.Writer) {
	for _, e := range d.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	for _, warn := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
