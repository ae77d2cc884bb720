package resetgen

import (
	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/netlist"
)

// SynthesizePorts walks the reset controller signal categories in their
// fixed order under the same deduplication discipline as the clock
// compiler: the added-signals set is pre-seeded with every output name
// (output-wins), and each category skips names already added (first-wins).
func SynthesizePorts(cfg *config.ResetConfig) []netlist.Port {
	added := netlist.NameSet{}
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
	if cfg.Reason != nil {
		added.Add(cfg.Reason.Output)
		added.Add(cfg.Reason.Valid)
	}

	// 1. stage clocks, then the reason recording clock
	clock := func(name string) {
		if name != "" && added.Add(name) {
			in(name, 1, "synchronizer clock")
		}
	}
	for ti := range cfg.Targets {
		t := &cfg.Targets[ti]
		if t.Stage != nil {
			clock(t.Stage.Clock)
		}
		for li := range t.Links {
			if t.Links[li].Stage != nil {
				clock(t.Links[li].Stage.Clock)
			}
		}
	}
	if cfg.Reason != nil && added.Add(cfg.Reason.Clock) {
		in(cfg.Reason.Clock, 1, "reason recording clock")
	}

	// 2. reset sources; a source whose name is also a target is owned by
	// the output
	for _, s := range cfg.Sources {
		if !added.Add(s.Name) {
			continue
		}
		in(s.Name, 1, "reset source, active "+s.Level.String())
	}

	// 3. controller test enable
	if cfg.TestEn != "" && added.Add(cfg.TestEn) {
		in(cfg.TestEn, 1, "DFT test enable")
	}

	// 4. reason clear
	if cfg.Reason != nil && added.Add(cfg.Reason.Clear) {
		in(cfg.Reason.Clear, 1, "reason clear request")
	}

	// 5. target outputs
	for _, t := range cfg.Targets {
		out(t.Name, 1, "reset target, active "+t.Level.String())
	}

	// 6. reason outputs
	if cfg.Reason != nil {
		out(cfg.Reason.Output, cfg.Reason.Width(), "sticky reset reason flags")
		out(cfg.Reason.Valid, 1, "reason flags valid")
	}

	return ports
}
