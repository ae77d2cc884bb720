package netlist

import (
	"bytes"
	"strings"
	"testing"
)

func TestNameSet(t *testing.T) {
	s := NameSet{}
	if !s.Add("clk_a") {
		t.Error("first Add returned false")
	}
	if s.Add("clk_a") {
		t.Error("second Add of the same name returned true")
	}
	if !s.Has("clk_a") || s.Has("clk_b") {
		t.Error("Has disagrees with Add")
	}
}

func TestWritePorts(t *testing.T) {
	var buf bytes.Buffer
	err := WritePorts(&buf, "clkctrl", []Port{
		{Dir: Input, Width: 1, Name: "osc_24m", Comment: "clock input, 24MHz"},
		{Dir: Input, Width: 4, Name: "div_val"},
		{Dir: Output, Width: 1, Name: "clk_core", Comment: "clock target"},
	})
	if err != nil {
		t.Fatalf("WritePorts: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "module clkctrl (\n") {
		t.Errorf("header wrong:\n%s", out)
	}
	if !strings.HasSuffix(out, ");\n") {
		t.Errorf("terminator wrong:\n%s", out)
	}
	for _, want := range []string{
		"input  wire osc_24m,",
		"// clock input, 24MHz",
		"input  wire [3:0] div_val,",
		"output wire clk_core",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// only the last port goes comma-free
	if strings.Contains(out, "clk_core,") {
		t.Errorf("last port must not carry a comma:\n%s", out)
	}
}

func TestWireAndAssign(t *testing.T) {
	var buf bytes.Buffer
	Wire(&buf, "a", 1)
	Wire(&buf, "b", 8)
	Assign(&buf, "a", "x & y")
	got := buf.String()
	want := "wire a;\nwire [7:0] b;\nassign a = x & y;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// VecWire keeps the range at width 1 so the net stays bit-selectable.
func TestVecWire(t *testing.T) {
	var buf bytes.Buffer
	VecWire(&buf, "flags", 1)
	VecWire(&buf, "bus", 4)
	got := buf.String()
	want := "wire [0:0] flags;\nwire [3:0] bus;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInstanceWithParams(t *testing.T) {
	var buf bytes.Buffer
	Instance(&buf, "CLK_DIV", "u_div",
		[]Param{{Name: "WIDTH", Value: "4"}, {Name: "DEFAULT_VAL", Value: "2"}},
		[]Conn{{Port: "clk_in", Expr: "osc"}, {Port: "clk_out", Expr: "clk_d"}})
	out := buf.String()

	if !strings.HasPrefix(out, "CLK_DIV #(\n") {
		t.Errorf("parameterised header wrong:\n%s", out)
	}
	for _, want := range []string{") u_div (", "(4),", "(2)\n", "(osc),", "(clk_d)\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestInstanceWithoutParams(t *testing.T) {
	var buf bytes.Buffer
	Instance(&buf, "CLK_INV", "u_inv", nil,
		[]Conn{{Port: "clk_in", Expr: "a"}, {Port: "clk_out", Expr: "b"}})
	out := buf.String()
	if !strings.HasPrefix(out, "CLK_INV u_inv (\n") {
		t.Errorf("plain header wrong:\n%s", out)
	}
	if strings.Contains(out, "#(") {
		t.Errorf("no parameter block expected:\n%s", out)
	}
}

// Concat is MSB-first: element i lands at bit i.
func TestConcat(t *testing.T) {
	tests := []struct {
		elems []string
		want  string
	}{
		{[]string{"a"}, "{a}"},
		{[]string{"a", "b"}, "{b, a}"},
		{[]string{"a", "b", "c"}, "{c, b, a}"},
	}
	for _, tt := range tests {
		if got := Concat(tt.elems); got != tt.want {
			t.Errorf("Concat(%v) = %q, want %q", tt.elems, got, tt.want)
		}
	}
}

func TestConstants(t *testing.T) {
	if got := DecConst(4, 10); got != "4'd10" {
		t.Errorf("DecConst = %q", got)
	}
	if got := BinConst(4, 5); got != "4'b0101" {
		t.Errorf("BinConst = %q", got)
	}
	if got := BinConst(2, 3); got != "2'b11" {
		t.Errorf("BinConst = %q", got)
	}
}

func TestHeaderBanner(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "clkctrl - clock controller")
	out := buf.String()
	if !strings.Contains(out, "// clkctrl - clock controller\n") {
		t.Errorf("title missing:\n%s", out)
	}
	if !strings.Contains(out, "Generated by chipgen") {
		t.Errorf("generator tag missing:\n%s", out)
	}
}
