package clockgen

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/zewei/chipgen/internal/config"
)

func compile(t *testing.T, cfg *config.ClockConfig) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Compile(cfg, &buf); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return buf.String()
}

func wantLines(t *testing.T, got string, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if !strings.Contains(got, line) {
			t.Errorf("output missing %q\n---\n%s", line, got)
		}
	}
}

// param and conn mirror the instance emission alignment so assertions do
// not hand-count padding.
func param(name, value string) string {
	return fmt.Sprintf(".%-20s (%s)", name, value)
}

func conn(port, expr string) string {
	return fmt.Sprintf(".%-10s (%s)", port, expr)
}

func TestCompileDirectPassThrough(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m", Freq: "24MHz"}},
		Targets: []config.ClockTarget{
			{Name: "clk_core", Links: []config.ClockLink{{Source: "osc_24m"}}},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"module clkctrl (",
		"wire clk_core_from_osc_24m;",
		"assign clk_core_from_osc_24m = osc_24m;",
		"assign clk_core = clk_core_from_osc_24m;",
		"endmodule",
	)
	if strings.Contains(out, "CLK_STD_MUX") || strings.Contains(out, "CLK_GF_MUX") {
		t.Errorf("single-link target must not instantiate a mux:\n%s", out)
	}
}

// Targets without a clk_ prefix gain one on their link wires.
func TestLinkWireNaming(t *testing.T) {
	tests := []struct {
		target, source, want string
	}{
		{"clk_core", "osc_24m", "clk_core_from_osc_24m"},
		{"core", "osc_24m", "clk_core_from_osc_24m"},
		{"clkx", "a", "clk_clkx_from_a"},
	}
	for _, tt := range tests {
		if got := linkWire(tt.target, tt.source); got != tt.want {
			t.Errorf("linkWire(%q, %q) = %q, want %q", tt.target, tt.source, got, tt.want)
		}
	}
}

func TestCompileStdMux(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_a"}, {Name: "osc_b"}},
		Targets: []config.ClockTarget{
			{
				Name:   "clk_x",
				Select: "x_sel",
				Links:  []config.ClockLink{{Source: "osc_a"}, {Source: "osc_b"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"CLK_STD_MUX #(",
		param("NUM", "2"),
		") u_clk_x_mux (",
		// MSB-first concatenation: input 0 occupies the LSB.
		conn("clk_in", "{clk_x_from_osc_b, clk_x_from_osc_a}"),
		conn("sel", "x_sel"),
		"assign clk_x = clk_x_mux_out;",
	)
	if strings.Contains(out, "CLK_GF_MUX") {
		t.Errorf("target without reset must use the standard mux:\n%s", out)
	}
}

func TestCompileGlitchFreeMux(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		TestEn: "test_en",
		Inputs: []config.ClockInput{{Name: "osc_a"}, {Name: "osc_b"}},
		Targets: []config.ClockTarget{
			{
				Name:    "clk_x",
				Select:  "x_sel",
				Reset:   "x_rst_n",
				TestClk: "tck",
				Links:   []config.ClockLink{{Source: "osc_a"}, {Source: "osc_b"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"CLK_GF_MUX #(",
		param("NUM", "2"),
		param("STAGE", "2"),
		conn("rst_n", "x_rst_n"),
		conn("test_clk", "tck"),
		conn("test_en", "test_en"),
	)
}

func TestCompileGlitchFreeMuxTies(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_a"}, {Name: "osc_b"}},
		Targets: []config.ClockTarget{
			{
				Name:   "clk_x",
				Select: "x_sel",
				Mux:    config.MuxConfig{Kind: config.MuxGlitchFree, KindSet: true},
				Links:  []config.ClockLink{{Source: "osc_a"}, {Source: "osc_b"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		conn("rst_n", "1'b1"),
		conn("test_clk", "1'b0"),
		conn("test_en", "1'b0"),
	)
}

func TestCompileTargetChainOrder(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name:  "clk_slow",
				ICG:   &config.ICGConfig{Enable: "slow_en"},
				Div:   &config.DividerConfig{Default: 4},
				Inv:   &config.InverterConfig{},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"wire clk_slow_icg_out;",
		"wire clk_slow_div_out;",
		"wire clk_slow_inv_out;",
		"assign clk_slow = clk_slow_inv_out;",
	)
	icg := strings.Index(out, "CLK_ICG")
	div := strings.Index(out, "CLK_DIV")
	inv := strings.Index(out, "CLK_INV")
	if !(icg >= 0 && icg < div && div < inv) {
		t.Errorf("chain order wrong: icg=%d div=%d inv=%d\n%s", icg, div, inv, out)
	}
}

func TestCompileStaticDivider(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name:  "clk_d3",
				Div:   &config.DividerConfig{Default: 3},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"CLK_DIV #(",
		param("WIDTH", "2"),
		param("DEFAULT_VAL", "3"),
		conn("div", "2'd3"),
		conn("div_valid", "1'b0"),
	)
	if strings.Contains(out, "CLK_DIV_AUTO") {
		t.Errorf("static divider must not use the auto variant:\n%s", out)
	}
}

// A dynamic divide value with no valid strobe selects the self-synchronizing
// variant.
func TestCompileAutoDivider(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name:  "clk_adc",
				Div:   &config.DividerConfig{Default: 2, Width: 4, Value: "adc_div"},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"input  wire [3:0] adc_div",
		"CLK_DIV_AUTO #(",
		conn("div", "adc_div"),
	)
	if strings.Contains(out, "div_valid") {
		t.Errorf("auto divider has no valid handshake:\n%s", out)
	}
}

func TestCompileDynamicDividerWithValid(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name: "clk_adc",
				Div: &config.DividerConfig{
					Default: 2, Width: 4,
					Value: "adc_div", Valid: "adc_vld", Ready: "adc_rdy",
				},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"CLK_DIV #(",
		conn("div", "adc_div"),
		conn("div_valid", "adc_vld"),
		conn("div_ready", "adc_rdy"),
	)
	if strings.Contains(out, "CLK_DIV_AUTO") {
		t.Errorf("a valid strobe selects the handshake variant:\n%s", out)
	}
}

// A guide cell renames the stage's native output to a _pre_sta wire and
// bridges it back to the canonical name through exactly one instance.
func TestCompileStaGuideSplice(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name: "clk_g",
				ICG: &config.ICGConfig{
					Enable: "g_en",
					Sta:    config.StaGuide{Cell: "STA_BUF"},
				},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"wire clk_g_icg_out_pre_sta;",
		conn("clk_out", "clk_g_icg_out_pre_sta"),
		"STA_BUF u_clk_g_icg_sta (",
		conn("in", "clk_g_icg_out_pre_sta"),
		conn("out", "clk_g_icg_out"),
	)
	if got := strings.Count(out, "STA_BUF"); got != 1 {
		t.Errorf("STA_BUF instantiated %d times, want 1", got)
	}
}

func TestCompileStaGuideExplicitPorts(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name: "clk_g",
				ICG: &config.ICGConfig{
					Sta: config.StaGuide{Cell: "DLY4", In: "A", Out: "Z", Inst: "u_dly_core"},
				},
				Links: []config.ClockLink{{Source: "osc_24m"}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"DLY4 u_dly_core (",
		conn("A", "clk_g_icg_out_pre_sta"),
		conn("Z", "clk_g_icg_out"),
	)
}

// One link whose only stage is an inverter collapses to a ~ assign.
func TestCompileDeprecatedInverterForm(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name:  "clk_n",
				Links: []config.ClockLink{{Source: "osc_24m", Inv: &config.InverterConfig{}}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out, "assign clk_n = ~clk_n_from_osc_24m;")
	if strings.Contains(out, "CLK_INV") {
		t.Errorf("deprecated form must not instantiate CLK_INV:\n%s", out)
	}
}

func TestCompileLinkStages(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		Inputs: []config.ClockInput{{Name: "osc_24m"}},
		Targets: []config.ClockTarget{
			{
				Name: "clk_p",
				Links: []config.ClockLink{{
					Source: "osc_24m",
					ICG:    &config.ICGConfig{Enable: "p_en"},
					Div:    &config.DividerConfig{Default: 2},
				}},
			},
		},
	}
	out := compile(t, cfg)
	wantLines(t, out,
		"wire clk_p_from_osc_24m_icg;",
		"wire clk_p_from_osc_24m;",
		") u_clk_p_osc_24m_icg (",
		") u_clk_p_osc_24m_div (",
		"assign clk_p = clk_p_from_osc_24m;",
	)
}

func TestCompileDeterministic(t *testing.T) {
	cfg := &config.ClockConfig{
		Name:   "clkctrl",
		TestEn: "test_en",
		Inputs: []config.ClockInput{{Name: "osc_a"}, {Name: "osc_b"}},
		Targets: []config.ClockTarget{
			{
				Name:   "clk_x",
				Select: "x_sel",
				Reset:  "x_rst_n",
				Div:    &config.DividerConfig{Default: 6},
				Links:  []config.ClockLink{{Source: "osc_a"}, {Source: "osc_b"}},
			},
		},
	}
	first := compile(t, cfg)
	second := compile(t, cfg)
	if first != second {
		t.Error("two compilations of the same declaration differ")
	}
}
