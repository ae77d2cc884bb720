package schematic

import (
	"fmt"
	"io"
	"strings"

	"github.com/zewei/chipgen/internal/config"
)

// WriteClock renders the clock controller diagram: legend, a two-column
// source table, then one row per target with link stages on the left, the
// combining mux in the middle, target stages on the right, and an output
// arrow. Vertical packing uses an accumulated cursor over per-link slot
// heights so compound rows never overlap.
func WriteClock(cfg *config.ClockConfig, w io.Writer) error {
	preamble(w, cfg.Name+" - clock controller")

	block(w, "legend", 0, 0, 4.5, legendH, "util.colors.green", cfg.Name, "")
	label(w, 6.0, legendH/2, "blue corner = STA guide cell")

	// source table
	tableTop := -1.0
	for i, in := range cfg.Inputs {
		y := tableTop - float64(i+1)*sourceRowH
		name := in.Name
		if in.Freq != "" {
			name += "  " + in.Freq
		}
		block(w, fmt.Sprintf("src%d", i), 0, y, 4.5, sourceRowH, "util.colors.orange", name, "")
	}

	y := tableTop - float64(len(cfg.Inputs))*sourceRowH - 1.5
	for ti := range cfg.Targets {
		y = clockTargetRow(w, cfg, &cfg.Targets[ti], ti, y) - rowGap
	}

	postamble(w)
	return nil
}

// clockTargetRow draws one target row starting at rowTop and returns the
// row's bottom y.
func clockTargetRow(w io.Writer, cfg *config.ClockConfig, t *config.ClockTarget, ti int, rowTop float64) float64 {
	slots := make([]float64, len(t.Links))
	total := 0.0
	for i := range t.Links {
		l := &t.Links[i]
		if l.ICG != nil || l.Div != nil || l.Inv != nil {
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

	// link column
	centers := make([]float64, len(t.Links))
	acc := 0.0
	for i := range t.Links {
		l := &t.Links[i]
		cy := rowTop - acc - slots[i]/2
		acc += slots[i]
		centers[i] = cy
		id := fmt.Sprintf("t%d_lnk%d", ti, i)
		if slots[i] == slotStage {
			name := l.Source + ": " + strings.Join(linkStageNames(l), "+")
			block(w, id, linkColumnX, cy-stageBlockH/2, stageBlockW, stageBlockH,
				"util.colors.blue", name,
				`, ports: (west: ((id: "in"),), east: ((id: "out"),))`)
			if ann := linkStageAnnotation(l); ann != "" {
				label(w, linkColumnX+stageBlockW/2, cy-stageBlockH/2-0.3, ann)
			}
			if linkHasSta(l) {
				staMarker(w, linkColumnX, cy-stageBlockH/2, stageBlockW, stageBlockH)
			}
		} else {
			label(w, linkColumnX+stageBlockW/2, cy, l.Source)
		}
	}

	// combining mux
	chainX := targetStageStart
	if len(t.Links) >= 2 {
		var ports []string
		for i := range t.Links {
			ratio := (centers[i] - rowBottom) / total * 100
			ports = append(ports, fmt.Sprintf("(id: %q, ratio: %.1f%%)", fmt.Sprintf("in%d", i), ratio))
		}
		extra := fmt.Sprintf(", ports: (west: (%s,), east: ((id: \"out\"),))", strings.Join(ports, ", "))
		muxID := fmt.Sprintf("t%d_mux", ti)
		block(w, muxID, combineColumnX, rowBottom, 1.8, total, "util.colors.purple", t.MuxKind().String(), extra)
		for i := range t.Links {
			if slots[i] == slotStage {
				wireLine(w, fmt.Sprintf("t%d_w%d", ti, i),
					fmt.Sprintf("t%d_lnk%d-port-out", ti, i),
					fmt.Sprintf("t%d_mux-port-in%d", ti, i))
			} else {
				fmt.Fprintf(w, "  cetz.draw.line((%.2f, %.2f), (%.2f, %.2f))\n",
					linkColumnX+stageBlockW, centers[i], combineColumnX, centers[i])
			}
		}
		if t.Mux.Sta.Present() {
			staMarker(w, combineColumnX, rowBottom, 1.8, total)
		}
		if t.Select != "" {
			label(w, combineColumnX+0.9, rowBottom-0.3, "sel: "+t.Select)
		}
	}

	// target-level stages
	type stage struct {
		name string
		ann  string
		sta  bool
	}
	var stages []stage
	if t.ICG != nil {
		stages = append(stages, stage{"ICG", "en: " + t.ICG.Enable, t.ICG.Sta.Present()})
	}
	if t.Div != nil {
		stages = append(stages, stage{fmt.Sprintf("DIV%d", t.Div.Default), divAnnotation(t.Div), t.Div.Sta.Present()})
	}
	if t.Inv != nil {
		stages = append(stages, stage{"INV", "", t.Inv.Sta.Present()})
	}
	x := chainX
	for si, s := range stages {
		id := fmt.Sprintf("t%d_st%d", ti, si)
		block(w, id, x, rowCenter-stageBlockH/2, stageBlockW, stageBlockH, "util.colors.blue", s.name,
			`, ports: (west: ((id: "in"),), east: ((id: "out"),))`)
		if s.ann != "" {
			label(w, x+stageBlockW/2, rowCenter-stageBlockH/2-0.3, s.ann)
		}
		if s.sta {
			staMarker(w, x, rowCenter-stageBlockH/2, stageBlockW, stageBlockH)
		}
		x += targetStageStep
	}

	outName := t.Name
	if t.Freq != "" {
		outName += " (" + t.Freq + ")"
	}
	arrow(w, x, rowCenter, outName)
	return rowBottom
}

func linkStageNames(l *config.ClockLink) []string {
	var names []string
	if l.ICG != nil {
		names = append(names, "ICG")
	}
	if l.Div != nil {
		names = append(names, fmt.Sprintf("DIV%d", l.Div.Default))
	}
	if l.Inv != nil {
		names = append(names, "INV")
	}
	return names
}

func linkStageAnnotation(l *config.ClockLink) string {
	if l.Div != nil {
		return divAnnotation(l.Div)
	}
	if l.ICG != nil && l.ICG.Enable != "" {
		return "en: " + l.ICG.Enable
	}
	return ""
}

func divAnnotation(d *config.DividerConfig) string {
	if d.Dynamic() {
		return "div: " + d.Value
	}
	return fmt.Sprintf("div: %d", d.Default)
}

func linkHasSta(l *config.ClockLink) bool {
	if l.ICG != nil && l.ICG.Sta.Present() {
		return true
	}
	if l.Div != nil && l.Div.Sta.Present() {
		return true
	}
	if l.Inv != nil && l.Inv.Sta.Present() {
		return true
	}
	return false
}
