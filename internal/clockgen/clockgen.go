// Package clockgen compiles a clock controller declaration into a
// synthesizable Verilog netlist, the primitive-cell library it
// instantiates, and a Typst schematic.
package clockgen

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/zewei/chipgen/internal/cells"
	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/netlist"
	"github.com/zewei/chipgen/internal/project"
	"github.com/zewei/chipgen/internal/schematic"
)

// Options tune artifact generation; the zero value is the normal flow.
type Options struct {
	ForceCells  bool // rewrite the primitive library even when complete
	NoSchematic bool
}

// Compile writes the controller netlist for cfg to w. Port synthesis and
// chain layout errors are fatal; nothing useful is on w after an error.
func Compile(cfg *config.ClockConfig, w io.Writer) error {
	ports, err := SynthesizePorts(cfg)
	if err != nil {
		return err
	}
	netlist.Header(w, cfg.Name+" - clock controller")
	if err := netlist.WritePorts(w, cfg.Name, ports); err != nil {
		return errors.Wrap(err, "writing ports")
	}
	fmt.Fprintln(w)

	e := &emitter{w: w, cfg: cfg}
	for i := range cfg.Targets {
		if err := e.emitTarget(&cfg.Targets[i]); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "endmodule\n")
	return err
}

// Generate runs the full artifact flow: controller netlist, primitive
// library, schematic. The netlist is the product; primitive-library and
// schematic failures are demoted to warnings on stderr.
func Generate(cfg *config.ClockConfig, proj *project.Project, opts Options) error {
	path := proj.File(cfg.Name + ".v")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := Compile(cfg, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	proj.FormatVerilogFile(path)

	if err := cells.Ensure(proj.OutputPath(), cells.Clock, opts.ForceCells, proj); err != nil {
		fmt.Fprintf(os.Stderr, "warning: clock primitive library: %v\n", err)
	}
	if !opts.NoSchematic {
		if err := schematic.WriteClockFile(cfg, proj.OutputPath()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: schematic for %s: %v\n", cfg.Name, err)
		}
	}
	return nil
}
