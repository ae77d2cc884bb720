// Package schematic renders controller diagrams as Typst documents built
// on the cetz and circuiteria packages. The layout consumes the same
// intermediate model as the netlist emitters and mirrors their structure:
// whatever chain the netlist instantiates, the diagram shows.
//
// Schematic failures never fail a compilation; callers log and keep the
// netlist.
package schematic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zewei/chipgen/internal/config"
)

const (
	cetzImport       = `#import "@preview/cetz:0.2.2"`
	circuitImport    = `#import "@preview/circuiteria:0.1.0"`
	slotStub         = 1.0 // plain pass-through link row
	slotStage        = 2.2 // link row carrying a stage block with hanging labels
	stageBlockH      = 1.4
	stageBlockW      = 3.0
	rowGap           = 0.8
	legendH          = 0.8
	sourceRowH       = 0.7
	staMarkerInset   = 0.35
	linkColumnX      = 3.0
	combineColumnX   = 7.5
	targetStageStep  = 3.6
	targetStageStart = 10.5
)

// WriteClockFile renders the clock controller schematic to
// <dir>/<name>.typ.
func WriteClockFile(cfg *config.ClockConfig, dir string) error {
	return writeFile(filepath.Join(dir, cfg.Name+".typ"), func(w io.Writer) error {
		return WriteClock(cfg, w)
	})
}

// WriteResetFile renders the reset controller schematic to
// <dir>/<name>.typ.
func WriteResetFile(cfg *config.ResetConfig, dir string) error {
	return writeFile(filepath.Join(dir, cfg.Name+".typ"), func(w io.Writer) error {
		return WriteReset(cfg, w)
	})
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func preamble(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n\n", cetzImport, circuitImport)
	fmt.Fprintf(w, "#set page(width: auto, height: auto, margin: 1cm)\n")
	fmt.Fprintf(w, "#set text(font: \"DejaVu Sans Mono\", size: 9pt)\n\n")
	fmt.Fprintf(w, "= %s\n\n", title)
	fmt.Fprintf(w, "#circuiteria.circuit({\n")
	fmt.Fprintf(w, "  import circuiteria: *\n\n")
}

func postamble(w io.Writer) {
	fmt.Fprintf(w, "})\n")
}

func block(w io.Writer, id string, x, y, bw, bh float64, fill, name string, extra string) {
	fmt.Fprintf(w, "  element.block(x: %.2f, y: %.2f, w: %.2f, h: %.2f, id: %q, fill: %s, name: %q%s)\n",
		x, y, bw, bh, id, fill, name, extra)
}

func wireLine(w io.Writer, id, from, to string) {
	fmt.Fprintf(w, "  wire.wire(%q, (%q, %q), style: \"zigzag\")\n", id, from, to)
}

func label(w io.Writer, x, y float64, text string) {
	fmt.Fprintf(w, "  cetz.draw.content((%.2f, %.2f), text(size: 8pt)[%s])\n", x, y, text)
}

// staMarker draws the small blue triangle inset into the upper-right
// corner of a stage block that carries an STA guide.
func staMarker(w io.Writer, x, y, bw, bh float64) {
	x2 := x + bw
	yt := y + bh
	fmt.Fprintf(w, "  cetz.draw.line((%.2f, %.2f), (%.2f, %.2f), (%.2f, %.2f), close: true, fill: blue, stroke: none)\n",
		x2-staMarkerInset, yt, x2, yt, x2, yt-staMarkerInset)
}

// arrow draws the final right-arrow from a chain to its output label.
func arrow(w io.Writer, x, y float64, text string) {
	fmt.Fprintf(w, "  cetz.draw.line((%.2f, %.2f), (%.2f, %.2f), mark: (end: \">\"))\n",
		x, y, x+1.2, y)
	fmt.Fprintf(w, "  cetz.draw.content((%.2f, %.2f), anchor: \"west\", [%s])\n",
		x+1.4, y, text)
}
