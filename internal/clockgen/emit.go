package clockgen

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/netlist"
)

// Glitch-free mux synchronizer depth. Fixed for all generated muxes.
const gfMuxStage = 2

// linkWire names the wire carrying one link's conditioned clock. Targets
// conventionally already carry a clk_ prefix; when one is present it is not
// doubled.
func linkWire(target, source string) string {
	if len(target) >= 4 && target[:4] == "clk_" {
		return target + "_from_" + source
	}
	return "clk_" + target + "_from_" + source
}

func orTie(expr, tie string) string {
	if expr == "" {
		return tie
	}
	return expr
}

// emitter carries the per-compilation state for one controller body.
type emitter struct {
	w   io.Writer
	cfg *config.ClockConfig
}

func (e *emitter) emitTarget(t *config.ClockTarget) error {
	netlist.Comment(e.w, "---- target: %s ----", t.Name)

	// Deprecated single-link inversion form: one link whose only stage is
	// a bare inverter and no target-level chain collapses to a ~ assign.
	if len(t.Links) == 1 && t.ICG == nil && t.Div == nil && t.Inv == nil {
		l := &t.Links[0]
		if l.ICG == nil && l.Div == nil && l.Inv != nil && !l.Inv.Sta.Present() {
			lw := linkWire(t.Name, l.Source)
			netlist.Wire(e.w, lw, 1)
			netlist.Assign(e.w, lw, l.Source)
			netlist.Assign(e.w, t.Name, "~"+lw)
			fmt.Fprintln(e.w)
			return nil
		}
	}

	linkWires := make([]string, len(t.Links))
	for i := range t.Links {
		l := &t.Links[i]
		lw := linkWire(t.Name, l.Source)
		linkWires[i] = lw
		if err := e.emitLink(t, l, i, lw); err != nil {
			return err
		}
	}

	var cur string
	switch len(t.Links) {
	case 0:
		return errors.Errorf("target %s: no links", t.Name)
	case 1:
		cur = linkWires[0]
	default:
		muxOut, err := e.emitMux(t, linkWires)
		if err != nil {
			return err
		}
		cur = muxOut
	}

	if t.ICG != nil {
		out := t.Name + "_icg_out"
		netlist.Wire(e.w, out, 1)
		e.emitICG(t.ICG, cur, out, "u_"+t.Name+"_icg", "u_"+t.Name+"_icg_sta")
		cur = out
	}
	if t.Div != nil {
		out := t.Name + "_div_out"
		netlist.Wire(e.w, out, 1)
		if err := e.emitDiv(t.Div, cur, out, "u_"+t.Name+"_div", "u_"+t.Name+"_div_sta", "target "+t.Name); err != nil {
			return err
		}
		cur = out
	}
	if t.Inv != nil {
		out := t.Name + "_inv_out"
		netlist.Wire(e.w, out, 1)
		e.emitInv(t.Inv, cur, out, "u_"+t.Name+"_inv", "u_"+t.Name+"_inv_sta")
		cur = out
	}

	netlist.Assign(e.w, t.Name, cur)
	fmt.Fprintln(e.w)
	return nil
}

// emitLink lays out one link sub-chain: source -> ICG? -> DIV? -> INV? ->
// link wire. Without stages it collapses to a direct assign.
func (e *emitter) emitLink(t *config.ClockTarget, l *config.ClockLink, idx int, lw string) error {
	instBase := "u_" + t.Name + "_" + l.Source
	if idx > 0 {
		instBase = fmt.Sprintf("u_%s_%s_%d", t.Name, l.Source, idx)
	}
	where := fmt.Sprintf("target %s link %s", t.Name, l.Source)

	type stage struct {
		kind string
		emit func(in, out, inst, sta string) error
	}
	var stages []stage
	if l.ICG != nil {
		g := l.ICG
		stages = append(stages, stage{"icg", func(in, out, inst, sta string) error {
			e.emitICG(g, in, out, inst, sta)
			return nil
		}})
	}
	if l.Div != nil {
		d := l.Div
		stages = append(stages, stage{"div", func(in, out, inst, sta string) error {
			return e.emitDiv(d, in, out, inst, sta, where)
		}})
	}
	if l.Inv != nil {
		v := l.Inv
		stages = append(stages, stage{"inv", func(in, out, inst, sta string) error {
			e.emitInv(v, in, out, inst, sta)
			return nil
		}})
	}

	if len(stages) == 0 {
		netlist.Wire(e.w, lw, 1)
		netlist.Assign(e.w, lw, l.Source)
		return nil
	}

	cur := l.Source
	for i, s := range stages {
		out := lw
		if i < len(stages)-1 {
			out = lw + "_" + s.kind
		}
		netlist.Wire(e.w, out, 1)
		inst := instBase + "_" + s.kind
		if err := s.emit(cur, out, inst, inst+"_sta"); err != nil {
			return err
		}
		cur = out
	}
	return nil
}

// emitMux instantiates the combining multiplexer for a multi-link target
// and returns the wire downstream stages read.
func (e *emitter) emitMux(t *config.ClockTarget, linkWires []string) (string, error) {
	if t.Select == "" {
		return "", errors.Errorf("target %s: %d links but no select signal", t.Name, len(linkWires))
	}
	out := t.Name + "_mux_out"
	netlist.Wire(e.w, out, 1)
	dst := e.staPre(t.Mux.Sta, out)

	n := len(linkWires)
	switch t.MuxKind() {
	case config.MuxGlitchFree:
		testClk := t.TestClk
		if testClk == "" {
			testClk = e.cfg.RefClk
		}
		netlist.Instance(e.w, "CLK_GF_MUX", "u_"+t.Name+"_mux",
			[]netlist.Param{
				{Name: "NUM", Value: fmt.Sprintf("%d", n)},
				{Name: "STAGE", Value: fmt.Sprintf("%d", gfMuxStage)},
			},
			[]netlist.Conn{
				{Port: "clk_in", Expr: netlist.Concat(linkWires)},
				{Port: "sel", Expr: t.Select},
				{Port: "rst_n", Expr: orTie(t.Reset, "1'b1")},
				{Port: "test_clk", Expr: orTie(testClk, "1'b0")},
				{Port: "test_en", Expr: orTie(e.cfg.TestEn, "1'b0")},
				{Port: "clk_out", Expr: dst},
			})
	default:
		netlist.Instance(e.w, "CLK_STD_MUX", "u_"+t.Name+"_mux",
			[]netlist.Param{{Name: "NUM", Value: fmt.Sprintf("%d", n)}},
			[]netlist.Conn{
				{Port: "clk_in", Expr: netlist.Concat(linkWires)},
				{Port: "sel", Expr: t.Select},
				{Port: "clk_out", Expr: dst},
			})
	}
	e.staSplice(t.Mux.Sta, dst, out, "u_"+t.Name+"_mux_sta")
	return out, nil
}

func (e *emitter) emitICG(g *config.ICGConfig, in, out, inst, staInst string) {
	dst := e.staPre(g.Sta, out)
	polarity := "1"
	if g.Polarity == config.PolarityLow {
		polarity = "0"
	}
	netlist.Instance(e.w, "CLK_ICG", inst,
		[]netlist.Param{
			{Name: "CLOCK_DURING_RESET", Value: boolParam(g.ClockDuringReset)},
			{Name: "POLARITY", Value: polarity},
		},
		[]netlist.Conn{
			{Port: "clk_in", Expr: in},
			{Port: "en", Expr: orTie(g.Enable, "1'b1")},
			{Port: "test_en", Expr: orTie(e.cfg.TestEn, "1'b0")},
			{Port: "rst_n", Expr: orTie(g.Reset, "1'b1")},
			{Port: "clk_out", Expr: dst},
		})
	e.staSplice(g.Sta, dst, out, staInst)
}

func (e *emitter) emitDiv(d *config.DividerConfig, in, out, inst, staInst, where string) error {
	width := d.EffectiveWidth()
	if width <= 0 {
		return errors.Errorf("%s: divider width must be positive (dynamic dividers need an explicit width)", where)
	}
	dst := e.staPre(d.Sta, out)
	params := []netlist.Param{
		{Name: "WIDTH", Value: fmt.Sprintf("%d", width)},
		{Name: "DEFAULT_VAL", Value: fmt.Sprintf("%d", d.Default)},
		{Name: "CLOCK_DURING_RESET", Value: boolParam(d.ClockDuringReset)},
	}

	if d.Dynamic() && d.Valid == "" {
		// No handshake on the value pin: the auto variant synchronizes the
		// value itself and generates its own strobe.
		netlist.Instance(e.w, "CLK_DIV_AUTO", inst, params,
			[]netlist.Conn{
				{Port: "clk_in", Expr: in},
				{Port: "rst_n", Expr: orTie(d.Reset, "1'b1")},
				{Port: "en", Expr: orTie(d.Enable, "1'b1")},
				{Port: "test_en", Expr: orTie(e.cfg.TestEn, "1'b0")},
				{Port: "div", Expr: d.Value},
				{Port: "count", Expr: d.Count},
				{Port: "clk_out", Expr: dst},
			})
	} else {
		divExpr := netlist.DecConst(width, d.Default)
		validExpr := "1'b0"
		if d.Dynamic() {
			divExpr = d.Value
			validExpr = d.Valid
		}
		netlist.Instance(e.w, "CLK_DIV", inst, params,
			[]netlist.Conn{
				{Port: "clk_in", Expr: in},
				{Port: "rst_n", Expr: orTie(d.Reset, "1'b1")},
				{Port: "en", Expr: orTie(d.Enable, "1'b1")},
				{Port: "test_en", Expr: orTie(e.cfg.TestEn, "1'b0")},
				{Port: "div", Expr: divExpr},
				{Port: "div_valid", Expr: validExpr},
				{Port: "div_ready", Expr: d.Ready},
				{Port: "count", Expr: d.Count},
				{Port: "clk_out", Expr: dst},
			})
	}
	e.staSplice(d.Sta, dst, out, staInst)
	return nil
}

func (e *emitter) emitInv(v *config.InverterConfig, in, out, inst, staInst string) {
	dst := e.staPre(v.Sta, out)
	netlist.Instance(e.w, "CLK_INV", inst, nil,
		[]netlist.Conn{
			{Port: "clk_in", Expr: in},
			{Port: "clk_out", Expr: dst},
		})
	e.staSplice(v.Sta, dst, out, staInst)
}

// staPre returns the wire a stage's native output drives. Without a guide
// that is the canonical wire itself; with one, a renamed _pre_sta wire is
// declared and the guide instance bridges it back to the canonical name,
// so downstream consumers read the same name either way.
func (e *emitter) staPre(sta config.StaGuide, out string) string {
	if !sta.Present() {
		return out
	}
	pre := out + "_pre_sta"
	netlist.Wire(e.w, pre, 1)
	return pre
}

func (e *emitter) staSplice(sta config.StaGuide, pre, out, fallbackInst string) {
	if !sta.Present() {
		return
	}
	inst := sta.Inst
	if inst == "" {
		inst = fallbackInst
	}
	inPort := sta.In
	if inPort == "" {
		inPort = "in"
	}
	outPort := sta.Out
	if outPort == "" {
		outPort = "out"
	}
	netlist.Instance(e.w, sta.Cell, inst, nil,
		[]netlist.Conn{
			{Port: inPort, Expr: pre},
			{Port: outPort, Expr: out},
		})
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
