package resetgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/netlist"
)

type emitter struct {
	w   io.Writer
	cfg *config.ResetConfig
}

// normalize returns the low-active form of a declared source: the source
// itself when it is low-active, its complement when high-active. The whole
// controller body runs on a low-active convention; polarity only reappears
// at the source boundary and in the final target assign.
func (e *emitter) normalize(source string) (string, error) {
	level, ok := e.cfg.SourceLevel(source)
	if !ok {
		return "", errors.Errorf("link source %q is not a declared reset source", source)
	}
	if level == config.ActiveHigh {
		return "~" + source, nil
	}
	return source, nil
}

func stageCell(k config.StageKind) (cell, sizeParam string) {
	switch k {
	case config.StageSync:
		return "RST_SYNC", "STAGE"
	case config.StageCount:
		return "RST_CNT", "CYCLE"
	default:
		return "RST_ASYNC", "STAGE"
	}
}

func (e *emitter) emitStage(s *config.ResetStage, inst, in, out string) {
	cell, sizeParam := stageCell(s.Kind)
	netlist.Instance(e.w, cell, inst,
		[]netlist.Param{{Name: sizeParam, Value: fmt.Sprintf("%d", s.Size)}},
		[]netlist.Conn{
			{Port: "clk", Expr: s.Clock},
			{Port: "rst_n_in", Expr: in},
			{Port: "test_en", Expr: testEnTie(e.cfg)},
			{Port: "rst_n_out", Expr: out},
		})
}

func testEnTie(cfg *config.ResetConfig) string {
	if cfg.TestEn == "" {
		return "1'b0"
	}
	return cfg.TestEn
}

func (e *emitter) emitTarget(t *config.ResetTarget) error {
	netlist.Comment(e.w, "---- target: %s ----", t.Name)

	if len(t.Links) == 0 {
		// No upstream source: permanently deasserted at the declared level.
		if t.Level == config.ActiveHigh {
			netlist.Assign(e.w, t.Name, "1'b0")
		} else {
			netlist.Assign(e.w, t.Name, "1'b1")
		}
		fmt.Fprintln(e.w)
		return nil
	}

	linkWires := make([]string, len(t.Links))
	for i := range t.Links {
		l := &t.Links[i]
		norm, err := e.normalize(l.Source)
		if err != nil {
			return errors.Wrapf(err, "target %s", t.Name)
		}
		lw := fmt.Sprintf("%s_from_%s_n", t.Name, l.Source)
		linkWires[i] = lw
		netlist.Wire(e.w, lw, 1)
		if l.Stage == nil {
			netlist.Assign(e.w, lw, norm)
			continue
		}
		inst := fmt.Sprintf("i_%s_link%d_%s", t.Name, i, l.Stage.Kind)
		e.emitStage(l.Stage, inst, norm, lw)
	}

	combined := linkWires[0]
	if len(linkWires) > 1 {
		combined = t.Name + "_comb_n"
		netlist.Wire(e.w, combined, 1)
		netlist.Assign(e.w, combined, strings.Join(linkWires, " & "))
	}

	internal := combined
	if t.Stage != nil {
		internal = t.Name + "_internal"
		netlist.Wire(e.w, internal, 1)
		inst := fmt.Sprintf("i_%s_target_%s", t.Name, t.Stage.Kind)
		e.emitStage(t.Stage, inst, combined, internal)
	}

	if t.Level == config.ActiveHigh {
		netlist.Assign(e.w, t.Name, "~"+internal)
	} else {
		netlist.Assign(e.w, t.Name, internal)
	}
	fmt.Fprintln(e.w)
	return nil
}

// emitReason writes the sticky reset-reason recorder: per-source low-active
// event wires, a 3-flop clear synchronizer with edge detect, the clear
// controller (init flag, 2-bit shift window, valid flag), one async-set
// sticky flop per recorded source, and the gated outputs.
func (e *emitter) emitReason() error {
	r := e.cfg.Reason
	w := e.w
	width := r.Width()

	netlist.Comment(w, "---- reset reason recorder ----")

	rootNorm, err := e.normalize(r.Root)
	if err != nil {
		return errors.Wrap(err, "reason recorder")
	}
	netlist.Wire(w, "reason_root_n", 1)
	netlist.Assign(w, "reason_root_n", rootNorm)

	events := make([]string, 0, len(r.Sources))
	for _, src := range r.Sources {
		norm, err := e.normalize(src)
		if err != nil {
			return errors.Wrap(err, "reason recorder")
		}
		ev := src + "_event_n"
		netlist.Wire(w, ev, 1)
		netlist.Assign(w, ev, norm)
		events = append(events, ev)
	}
	// The generate loop below bit-selects this net, so it needs an explicit
	// range even at width 1.
	netlist.VecWire(w, "reason_event_n", width)
	if len(events) == 0 {
		netlist.Assign(w, "reason_event_n", "1'b1")
	} else {
		netlist.Assign(w, "reason_event_n", netlist.Concat(events))
	}

	fmt.Fprintf(w, `
reg [2:0] reason_clear_sync;
always @(posedge %[1]s or negedge reason_root_n) begin
    if (!reason_root_n)
        reason_clear_sync <= 3'b000;
    else
        reason_clear_sync <= {reason_clear_sync[1:0], %[2]s};
end
wire reason_clear_pulse = reason_clear_sync[1] & ~reason_clear_sync[2];

reg       reason_init_done;
reg [1:0] reason_clear_window;
reg       reason_valid_q;
always @(posedge %[1]s or negedge reason_root_n) begin
    if (!reason_root_n) begin
        reason_init_done    <= 1'b0;
        reason_clear_window <= 2'b00;
        reason_valid_q      <= 1'b0;
    end else if (!reason_init_done) begin
        reason_init_done    <= 1'b1;
        reason_clear_window <= 2'b11;
        reason_valid_q      <= 1'b0;
    end else if (reason_clear_pulse) begin
        reason_clear_window <= 2'b11;
        reason_valid_q      <= 1'b0;
    end else if (reason_clear_window != 2'b00) begin
        reason_clear_window <= {1'b0, reason_clear_window[1]};
    end else begin
        reason_valid_q <= 1'b1;
    end
end
wire reason_clear_active = |reason_clear_window;

reg [%[3]d:0] reason_flags;
genvar gi;
generate
    for (gi = 0; gi < %[4]d; gi = gi + 1) begin : g_reason
        always @(posedge %[1]s or negedge reason_event_n[gi]) begin
            if (!reason_event_n[gi])
                reason_flags[gi] <= 1'b1;
            else if (reason_clear_active)
                reason_flags[gi] <= 1'b0;
        end
    end
endgenerate

`, r.Clock, r.Clear, width-1, width)

	netlist.Assign(w, r.Valid, "reason_valid_q")
	netlist.Assign(w, r.Output, fmt.Sprintf("%s ? reason_flags : {%d{1'b0}}", r.Valid, width))
	fmt.Fprintln(w)
	return nil
}
