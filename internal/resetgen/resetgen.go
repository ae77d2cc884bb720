// Package resetgen compiles a reset controller declaration into a
// synthesizable Verilog netlist, the reset primitive library, and a Typst
// schematic.
package resetgen

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
	ForceCells  bool
	NoSchematic bool
}

// Compile writes the controller netlist for cfg to w.
func Compile(cfg *config.ResetConfig, w io.Writer) error {
	ports := SynthesizePorts(cfg)
	netlist.Header(w, cfg.Name+" - reset controller")
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
	if cfg.Reason != nil {
		if err := e.emitReason(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "endmodule\n")
	return err
}

// Generate runs the full artifact flow: controller netlist, primitive
// library, schematic. Library and schematic failures become warnings.
func Generate(cfg *config.ResetConfig, proj *project.Project, opts Options) error {
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

	if err := cells.Ensure(proj.OutputPath(), cells.Reset, opts.ForceCells, proj); err != nil {
		fmt.Fprintf(os.Stderr, "warning: reset primitive library: %v\n", err)
	}
	if !opts.NoSchematic {
		if err := schematic.WriteResetFile(cfg, proj.OutputPath()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: schematic for %s: %v\n", cfg.Name, err)
		}
	}
	return nil
}
