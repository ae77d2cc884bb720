package clockgen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/netlist"
)

// SynthesizePorts walks the signal categories of a clock controller in
// their fixed order and returns the deduplicated port list.
//
// Two precedence rules apply. Output-wins: the added-signals set is
// pre-seeded with every target name, so an input clock (or a test clock)
// that collides with a target output is suppressed and the output owns the
// port. First-wins: within each category a name already in the set is
// skipped silently.
//
// Divider value/valid/ready/count names additionally live in an exclusive
// set of their own; a collision there is fatal.
func SynthesizePorts(cfg *config.ClockConfig) ([]netlist.Port, error) {
	added := netlist.NameSet{}
	divSigs := netlist.NameSet{}
	var ports []netlist.Port

	in := func(name string, width int, comment string) {
		ports = append(ports, netlist.Port{Dir: netlist.Input, Width: width, Name: name, Comment: comment})
	}
	out := func(name string, width int, comment string) {
		ports = append(ports, netlist.Port{Dir: netlist.Output, Width: width, Name: name, Comment: comment})
	}

	for _, t := range cfg.Targets {
		added.Add(t.Name)
	}

	// 1. input clocks
	for _, c := range cfg.Inputs {
		if !added.Add(c.Name) {
			continue
		}
		comment := "clock input"
		if c.Freq != "" {
			comment += ", " + c.Freq
		}
		if c.Duty != "" {
			comment += ", duty " + c.Duty
		}
		in(c.Name, 1, comment)
	}

	// 2. target clocks
	for _, t := range cfg.Targets {
		comment := "clock target"
		if t.Freq != "" {
			comment += ", " + t.Freq
		}
		out(t.Name, 1, comment)
	}

	// 3. divider handshake signals, target level before link level
	divPorts := func(d *config.DividerConfig, where string) error {
		if d == nil {
			return nil
		}
		width := d.EffectiveWidth()
		if d.Dynamic() && width <= 0 {
			return errors.Errorf("%s: dynamic divider requires an explicit positive width", where)
		}
		type sig struct {
			name    string
			dir     netlist.Direction
			width   int
			comment string
		}
		sigs := []sig{
			{d.Value, netlist.Input, width, "divide value for " + where},
			{d.Valid, netlist.Input, 1, "divide value valid for " + where},
			{d.Ready, netlist.Output, 1, "divide value accepted for " + where},
			{d.Count, netlist.Output, width, "divider count for " + where},
		}
		for _, s := range sigs {
			if s.name == "" {
				continue
			}
			if !divSigs.Add(s.name) {
				return errors.Errorf("%s: divider signal %q already used by another divider", where, s.name)
			}
			if !added.Add(s.name) {
				continue
			}
			ports = append(ports, netlist.Port{Dir: s.dir, Width: s.width, Name: s.name, Comment: s.comment})
		}
		if d.Enable != "" && added.Add(d.Enable) {
			in(d.Enable, 1, "divider enable for "+where)
		}
		return nil
	}
	for ti := range cfg.Targets {
		t := &cfg.Targets[ti]
		if err := divPorts(t.Div, "target "+t.Name); err != nil {
			return nil, err
		}
		for li := range t.Links {
			l := &t.Links[li]
			where := fmt.Sprintf("target %s link %s", t.Name, l.Source)
			if err := divPorts(l.Div, where); err != nil {
				return nil, err
			}
		}
	}

	// 4. controller test enable
	if cfg.TestEn != "" && added.Add(cfg.TestEn) {
		in(cfg.TestEn, 1, "DFT test enable")
	}

	// 5. clock gate enables and resets, target level before link level
	icgPorts := func(g *config.ICGConfig, where string) {
		if g == nil {
			return
		}
		if g.Enable != "" && added.Add(g.Enable) {
			in(g.Enable, 1, "clock gate enable for "+where)
		}
		if g.Reset != "" && added.Add(g.Reset) {
			in(g.Reset, 1, "clock gate reset for "+where)
		}
	}
	for ti := range cfg.Targets {
		t := &cfg.Targets[ti]
		icgPorts(t.ICG, "target "+t.Name)
		for li := range t.Links {
			l := &t.Links[li]
			icgPorts(l.ICG, fmt.Sprintf("target %s link %s", t.Name, l.Source))
		}
	}

	// 6. mux controls for multi-link targets
	for ti := range cfg.Targets {
		t := &cfg.Targets[ti]
		if len(t.Links) < 2 {
			continue
		}
		if t.Select != "" && added.Add(t.Select) {
			in(t.Select, config.SelectWidth(len(t.Links)), "clock select for "+t.Name)
		}
		if t.Reset != "" && added.Add(t.Reset) {
			in(t.Reset, 1, "mux reset for "+t.Name)
		}
		if t.TestClk != "" && added.Add(t.TestClk) {
			in(t.TestClk, 1, "DFT test clock for "+t.Name)
		}
	}

	// 7. divider resets that no earlier category claimed
	divReset := func(d *config.DividerConfig, where string) {
		if d == nil || d.Reset == "" {
			return
		}
		if added.Add(d.Reset) {
			in(d.Reset, 1, "divider reset for "+where)
		}
	}
	for ti := range cfg.Targets {
		t := &cfg.Targets[ti]
		divReset(t.Div, "target "+t.Name)
		for li := range t.Links {
			l := &t.Links[li]
			divReset(l.Div, fmt.Sprintf("target %s link %s", t.Name, l.Source))
		}
	}

	return ports, nil
}
