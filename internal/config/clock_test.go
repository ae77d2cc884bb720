package config

import (
	"strings"
	"testing"
)

func parseClockYAML(t *testing.T, src string) (*ClockConfig, *Diagnostics) {
	t.Helper()
	doc, err := DecodeDocument([]byte(src))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.Clock == nil {
		t.Fatalf("document has no clock section")
	}
	diag := &Diagnostics{}
	cfg := ParseClock(doc.Clock, diag)
	return cfg, diag
}

const minimalClock = `
clock:
  name: clkctrl
  inputs:
    - name: osc_24m
      freq: 24MHz
  targets:
    - name: clk_core
      links:
        - source: osc_24m
`

func TestParseClockMinimal(t *testing.T) {
	cfg, diag := parseClockYAML(t, minimalClock)
	if !diag.OK() {
		t.Fatalf("unexpected errors: %v", diag.Errors)
	}
	if cfg.Name != "clkctrl" {
		t.Errorf("Name = %q, want clkctrl", cfg.Name)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0].Freq != "24MHz" {
		t.Errorf("Inputs = %+v", cfg.Inputs)
	}
	if len(cfg.Targets) != 1 || len(cfg.Targets[0].Links) != 1 {
		t.Fatalf("Targets = %+v", cfg.Targets)
	}
	if cfg.Targets[0].Links[0].Source != "osc_24m" {
		t.Errorf("link source = %q", cfg.Targets[0].Links[0].Source)
	}
}

func TestParseClockRejections(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "missing_controller_name",
			src: `
clock:
  inputs:
    - name: a
  targets:
    - name: t
      links: [{source: a}]
`,
			wantErr: "missing required field 'name'",
		},
		{
			name: "empty_inputs",
			src: `
clock:
  name: c
  targets:
    - name: t
      links: [{source: a}]
`,
			wantErr: "empty input list",
		},
		{
			name: "empty_targets",
			src: `
clock:
  name: c
  inputs: [{name: a}]
`,
			wantErr: "empty target list",
		},
		{
			name: "multi_link_without_select",
			src: `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      links: [{source: a}, {source: b}]
`,
			wantErr: "no select signal",
		},
		{
			name: "invalid_mux_kind",
			src: `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      select: sel
      mux: {kind: MAGIC_MUX}
      links: [{source: a}, {source: b}]
`,
			wantErr: "invalid mux kind",
		},
		{
			name: "invalid_icg_polarity",
			src: `
clock:
  name: c
  inputs: [{name: a}]
  targets:
    - name: t
      icg: {en: ena, polarity: sideways}
      links: [{source: a}]
`,
			wantErr: "invalid icg polarity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diag := parseClockYAML(t, tt.src)
			if diag.OK() {
				t.Fatalf("expected an error containing %q, got none", tt.wantErr)
			}
			found := false
			for _, e := range diag.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", diag.Errors, tt.wantErr)
			}
		})
	}
}

func TestParseClockDuplicateTargetFirstWins(t *testing.T) {
	cfg, diag := parseClockYAML(t, `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      links: [{source: a}]
    - name: t
      links: [{source: b}]
`)
	if !diag.OK() {
		t.Fatalf("unexpected errors: %v", diag.Errors)
	}
	if len(diag.Warnings) != 1 || !strings.Contains(diag.Warnings[0], "duplicate target") {
		t.Errorf("Warnings = %v", diag.Warnings)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Links[0].Source != "a" {
		t.Errorf("first declaration did not win: %+v", cfg.Targets)
	}
}

func TestMuxKindInference(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want MuxKind
	}{
		{
			name: "no_reset_std",
			src: `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      select: sel
      links: [{source: a}, {source: b}]
`,
			want: MuxStd,
		},
		{
			name: "reset_glitch_free",
			src: `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      select: sel
      rst: rst_n
      links: [{source: a}, {source: b}]
`,
			want: MuxGlitchFree,
		},
		{
			name: "explicit_kind_wins",
			src: `
clock:
  name: c
  inputs: [{name: a}, {name: b}]
  targets:
    - name: t
      select: sel
      rst: rst_n
      mux: {kind: STD_MUX}
      links: [{source: a}, {source: b}]
`,
			want: MuxStd,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, diag := parseClockYAML(t, tt.src)
			if !diag.OK() {
				t.Fatalf("unexpected errors: %v", diag.Errors)
			}
			if got := cfg.Targets[0].MuxKind(); got != tt.want {
				t.Errorf("MuxKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The legacy boolean form `inv: true` and the map form `inv: {}` are
// equivalent.
func TestInverterLegacyBoolForm(t *testing.T) {
	tests := []struct {
		name string
		inv  string
		want bool
	}{
		{"bool_true", "inv: true", true},
		{"bool_false", "inv: false", false},
		{"empty_map", "inv: {}", true},
		{"absent", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `
clock:
  name: c
  inputs: [{name: a}]
  targets:
    - name: t
      ` + tt.inv + `
      links: [{source: a}]
`
			cfg, diag := parseClockYAML(t, src)
			if !diag.OK() {
				t.Fatalf("unexpected errors: %v", diag.Errors)
			}
			if got := cfg.Targets[0].Inv != nil; got != tt.want {
				t.Errorf("Inv present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDividerWidths(t *testing.T) {
	tests := []struct {
		name string
		div  DividerConfig
		want int
	}{
		{"static_default_2", DividerConfig{Default: 2}, 2},
		{"static_default_1", DividerConfig{Default: 1}, 1},
		{"static_default_8", DividerConfig{Default: 8}, 4},
		{"static_default_15", DividerConfig{Default: 15}, 4},
		{"explicit_width", DividerConfig{Default: 2, Width: 8}, 8},
		{"dynamic_no_width", DividerConfig{Default: 2, Value: "v"}, 0},
		{"dynamic_with_width", DividerConfig{Default: 2, Width: 4, Value: "v"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.div.EffectiveWidth(); got != tt.want {
				t.Errorf("EffectiveWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDividerDefaultOverflowWarns(t *testing.T) {
	_, diag := parseClockYAML(t, `
clock:
  name: c
  inputs: [{name: a}]
  targets:
    - name: t
      div: {default: 20, width: 4, value: dv}
      links: [{source: a}]
`)
	if !diag.OK() {
		t.Fatalf("unexpected errors: %v", diag.Errors)
	}
	if len(diag.Warnings) == 0 || !strings.Contains(diag.Warnings[0], "does not fit") {
		t.Errorf("Warnings = %v, want overflow warning", diag.Warnings)
	}
}

// The self-synchronizing divider variant has no ready pin, so a ready
// signal without a valid strobe would become an undriven output port.
func TestDividerReadyWithoutValidDropped(t *testing.T) {
	cfg, diag := parseClockYAML(t, `
clock:
  name: c
  inputs: [{name: a}]
  targets:
    - name: t
      div: {value: dv, width: 4, ready: dv_rdy}
      links: [{source: a}]
`)
	if !diag.OK() {
		t.Fatalf("unexpected errors: %v", diag.Errors)
	}
	if len(diag.Warnings) == 0 || !strings.Contains(diag.Warnings[0], "no ready pin") {
		t.Errorf("Warnings = %v, want a dropped-ready warning", diag.Warnings)
	}
	if got := cfg.Targets[0].Div.Ready; got != "" {
		t.Errorf("Ready = %q, want cleared", got)
	}
}

func TestSelectWidth(t *testing.T) {
	tests := []struct {
		links int
		want  int
	}{
		{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4},
	}
	for _, tt := range tests {
		if got := SelectWidth(tt.links); got != tt.want {
			t.Errorf("SelectWidth(%d) = %d, want %d", tt.links, got, tt.want)
		}
	}
}
