package schematic

import (
	"fmt"
	"io"
	"strings"

	"github.com/zewei/chipgen/internal/config"
)

// WriteReset renders the reset controller diagram: a source table colored
// by active level (high = red/H, low = blue/L), then per target the link
// column, an AND combining gate whose input port ratios line up with the
// link slots, inversion bubbles on high-active inputs, the optional
// target-level stage, and an output arrow.
func WriteReset(cfg *config.ResetConfig, w io.Writer) error {
	preamble(w, cfg.Name+" - reset controller")

	block(w, "legend", 0, 0, 4.5, legendH, "util.colors.green", cfg.Name, "")
	label(w, 6.2, legendH/2, "red = active high, blue = active low")

	tableTop := -1.0
	for i, s := range cfg.Sources {
		y := tableTop - float64(i+1)*sourceRowH
		fill := "util.colors.blue"
		tag := "L"
		if s.Level == config.ActiveHigh {
			fill = "util.colors.red"
			tag = "H"
		}
		block(w, fmt.Sprintf("src%d", i), 0, y, 4.5, sourceRowH, fill, s.Name+"  ["+tag+"]", "")
	}

	y := tableTop - float64(len(cfg.Sources))*sourceRowH - 1.5
	for ti := range cfg.Targets {
		y = resetTargetRow(w, cfg, &cfg.Targets[ti], ti, y) - rowGap
	}
	if cfg.Reason != nil {
		y = reasonRow(w, cfg.Reason, y)
	}

	postamble(w)
	return nil
}

func resetTargetRow(w io.Writer, cfg *config.ResetConfig, t *config.ResetTarget, ti int, rowTop float64) float64 {
	slots := make([]float64, len(t.Links))
	total := 0.0
	for i := range t.Links {
		if t.Links[i].Stage != nil {
			slots[i] = slotStage
		} else {
			slots[i] = slotStub
		}
		total += slots[i]
	}
	if total < stageBlockH+rowGap {
		total = stageBlockH + rowGap
	}
	rowBottom := rowTop - total
	rowCenter := (rowTop + rowBottom) / 2

	centers := make([]float64, len(t.Links))
	acc := 0.0
	for i := range t.Links {
		l := &t.Links[i]
		cy := rowTop - acc - slots[i]/2
		acc += slots[i]
		centers[i] = cy
		id := fmt.Sprintf("r%d_lnk%d", ti, i)
		if l.Stage != nil {
			name := l.Source + ": " + strings.ToUpper(l.Stage.Kind.String())
			block(w, id, linkColumnX, cy-stageBlockH/2, stageBlockW, stageBlockH,
				"util.colors.blue", name,
				`, ports: (west: ((id: "in"),), east: ((id: "out"),))`)
			label(w, linkColumnX+stageBlockW/2, cy-stageBlockH/2-0.3, stageAnnotation(l.Stage))
		} else {
			label(w, linkColumnX+stageBlockW/2, cy, l.Source)
		}
	}

	// combining AND gate; port ratios computed from the accumulated slot
	// heights so stage-block centers meet their input ports exactly
	if len(t.Links) >= 2 {
		var ports []string
		for i := range t.Links {
			ratio := (centers[i] - rowBottom) / total * 100
			ports = append(ports, fmt.Sprintf("(id: %q, ratio: %.1f%%)", fmt.Sprintf("in%d", i), ratio))
		}
		extra := fmt.Sprintf(", ports: (west: (%s,), east: ((id: \"out\"),))", strings.Join(ports, ", "))
		block(w, fmt.Sprintf("r%d_and", ti), combineColumnX, rowBottom, 1.8, total, "util.colors.yellow", "AND", extra)
		for i := range t.Links {
			if slots[i] == slotStage {
				wireLine(w, fmt.Sprintf("r%d_w%d", ti, i),
					fmt.Sprintf("r%d_lnk%d-port-out", ti, i),
					fmt.Sprintf("r%d_and-port-in%d", ti, i))
			} else {
				fmt.Fprintf(w, "  cetz.draw.line((%.2f, %.2f), (%.2f, %.2f))\n",
					linkColumnX+stageBlockW, centers[i], combineColumnX, centers[i])
			}
			// inversion bubble on inputs fed by a high-active source
			if level, ok := cfg.SourceLevel(t.Links[i].Source); ok && level == config.ActiveHigh {
				fmt.Fprintf(w, "  cetz.draw.circle((%.2f, %.2f), radius: 0.09, fill: white)\n",
					combineColumnX-0.12, centers[i])
			}
		}
	}

	x := targetStageStart
	if t.Stage != nil {
		id := fmt.Sprintf("r%d_tst", ti)
		block(w, id, x, rowCenter-stageBlockH/2, stageBlockW, stageBlockH, "util.colors.blue",
			strings.ToUpper(t.Stage.Kind.String()),
			`, ports: (west: ((id: "in"),), east: ((id: "out"),))`)
		label(w, x+stageBlockW/2, rowCenter-stageBlockH/2-0.3, stageAnnotation(t.Stage))
		x += targetStageStep
	}

	tag := "L"
	if t.Level == config.ActiveHigh {
		tag = "H"
	}
	arrow(w, x, rowCenter, t.Name+" ["+tag+"]")
	return rowBottom
}

func reasonRow(w io.Writer, r *config.ReasonConfig, rowTop float64) float64 {
	h := stageBlockH + 0.6
	block(w, "reason", linkColumnX, rowTop-h, stageBlockW+2, h, "util.colors.purple",
		fmt.Sprintf("REASON[%d]", r.Width()), "")
	label(w, linkColumnX+(stageBlockW+2)/2, rowTop-h-0.3,
		"clk: "+r.Clock+", root: "+r.Root)
	arrow(w, linkColumnX+stageBlockW+2, rowTop-h/2, r.Output)
	return rowTop - h
}

func stageAnnotation(s *config.ResetStage) string {
	unit := "stage"
	if s.Kind == config.StageCount {
		unit = "cycle"
	}
	return fmt.Sprintf("clk: %s, %s: %d", s.Clock, unit, s.Size)
}
