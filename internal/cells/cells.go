// Package cells materializes the primitive-cell library files the generated
// controllers instantiate. Cell names and port lists are output contracts:
// downstream flows match on them, so the bodies below are emitted verbatim.
// The bodies themselves are behavioral templates a user replaces with
// foundry IP.
package cells

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Kind selects the clock-side or reset-side library.
type Kind int

const (
	Clock Kind = iota
	Reset
)

func (k Kind) String() string {
	if k == Reset {
		return "reset"
	}
	return "clock"
}

// FileName is the library file name inside the project output directory.
func (k Kind) FileName() string {
	if k == Reset {
		return "reset_cell.v"
	}
	return "clock_cell.v"
}

// Cell is one primitive module template.
type Cell struct {
	Name string
	Body string
}

// Required returns the cell set for a library kind in canonical order.
func Required(kind Kind) []Cell {
	if kind == Reset {
		return resetCells
	}
	return clockCells
}

// Names lists the required cell names in canonical order.
func Names(kind Kind) []string {
	cells := Required(kind)
	names := make([]string, len(cells))
	for i, c := range cells {
		names[i] = c.Name
	}
	return names
}

// Formatter is the post-write hook; failures inside it are its own problem.
type Formatter interface {
	FormatVerilogFile(path string)
}

// Ensure guarantees <dir>/<kind file> exists and contains every required
// cell. A missing file (or force) gets a fresh write; an existing file is
// probed per cell with a `module <name>` substring match and only the
// missing cells are appended. Complete files are left untouched. Errors are
// non-fatal for the caller: log and keep the controller netlist.
func Ensure(dir string, kind Kind, force bool, f Formatter) error {
	path := filepath.Join(dir, kind.FileName())

	_, statErr := os.Stat(path)
	fresh := force || os.IsNotExist(statErr)

	if fresh {
		if err := writeAll(path, kind); err != nil {
			return err
		}
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		var missing []Cell
		for _, c := range Required(kind) {
			if !strings.Contains(string(content), "module "+c.Name) {
				missing = append(missing, c)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		if err := appendCells(path, missing); err != nil {
			return err
		}
	}

	if f != nil {
		f.FormatVerilogFile(path)
	}
	return nil
}

func writeAll(path string, kind Kind) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer out.Close()

	header := "// " + kind.FileName() + " - chipgen " + kind.String() + " primitive cell library\n" +
		"// Template cells with behavioral bodies. Replace with foundry IP\n" +
		"// before synthesis; names and ports are the contract.\n" +
		"`timescale 1ns / 1ps\n"
	if _, err := out.WriteString(header); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	for _, c := range Required(kind) {
		if _, err := out.WriteString("\n" + c.Body); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}

func appendCells(path string, missing []Cell) error {
	out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening %s for append", path)
	}
	defer out.Close()

	for _, c := range missing {
		if _, err := out.WriteString("\n" + c.Body); err != nil {
			return errors.Wrapf(err, "appending to %s", path)
		}
	}
	return nil
}
