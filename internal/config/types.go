package config

// Polarity is the enable polarity of an integrated clock gate.
type Polarity int

const (
	PolarityHigh Polarity = iota
	PolarityLow
)

func (p Polarity) String() string {
	if p == PolarityLow {
		return "low"
	}
	return "high"
}

// MuxKind selects the combining multiplexer primitive for a multi-link
// clock target. It is inferred from the target's reset signal unless the
// document names a kind explicitly.
type MuxKind int

const (
	// MuxStd is the raw combinational mux tree (CLK_STD_MUX).
	MuxStd MuxKind = iota
	// MuxGlitchFree is the sequenced glitch-free mux (CLK_GF_MUX).
	MuxGlitchFree
)

func (k MuxKind) String() string {
	if k == MuxGlitchFree {
		return "GF_MUX"
	}
	return "STD_MUX"
}

// ActiveLevel is the asserted level of a reset source or target.
type ActiveLevel int

const (
	ActiveLow ActiveLevel = iota
	ActiveHigh
)

func (l ActiveLevel) String() string {
	if l == ActiveHigh {
		return "high"
	}
	return "low"
}

// StageKind identifies the reset conditioning stage on a link or target.
type StageKind int

const (
	// StageAsync is the async-assert / sync-release synchronizer (RST_ASYNC).
	StageAsync StageKind = iota
	// StageSync is the fully synchronous pipeline (RST_SYNC).
	StageSync
	// StageCount is the counter-based release (RST_CNT).
	StageCount
)

func (k StageKind) String() string {
	switch k {
	case StageSync:
		return "sync"
	case StageCount:
		return "count"
	default:
		return "async"
	}
}

// StaGuide is a user-supplied cell spliced in series after a stage's native
// output so STA tools see a controllable boundary. Present iff Cell != "".
type StaGuide struct {
	Cell string // library cell name
	In   string // input port name on the cell
	Out  string // output port name on the cell
	Inst string // instance name; generated when empty
}

// Present reports whether a guide cell was configured.
func (s StaGuide) Present() bool { return s.Cell != "" }

// ICGConfig describes an integrated clock gate on a link or target.
type ICGConfig struct {
	Enable           string
	Polarity         Polarity
	TestEn           string // inherited from the controller
	Reset            string
	ClockDuringReset bool
	Sta              StaGuide
}

// DividerConfig describes a clock divider on a link or target.
// A divider is dynamic iff Value is non-empty; dynamic dividers require an
// explicit positive Width.
type DividerConfig struct {
	Default          int
	Width            int
	ClockDuringReset bool
	Reset            string
	Enable           string
	Value            string
	Valid            string
	Ready            string
	Count            string
	Sta              StaGuide
}

// Dynamic reports whether the divide value is driven by a signal.
func (d *DividerConfig) Dynamic() bool { return d.Value != "" }

// EffectiveWidth is the divider's bit width: the explicit width when given,
// otherwise the minimum width holding the static default. Returns 0 for a
// dynamic divider with no explicit width; emission treats that as fatal.
func (d *DividerConfig) EffectiveWidth() int {
	if d.Width > 0 {
		return d.Width
	}
	if d.Dynamic() {
		return 0
	}
	n := d.Default + 1
	if n < 2 {
		n = 2
	}
	return Clog2(n)
}

// InverterConfig describes a clock inverter stage.
type InverterConfig struct {
	Sta StaGuide
}

// MuxConfig carries the optional explicit mux kind and STA guide for a
// multi-link clock target.
type MuxConfig struct {
	Kind    MuxKind
	KindSet bool // document named the kind explicitly
	Sta     StaGuide
}

// ClockInput is one upstream clock of the controller.
type ClockInput struct {
	Name string
	Freq string // annotation only
	Duty string // annotation only
}

// ClockLink is one upstream source feeding a clock target.
type ClockLink struct {
	Source string
	ICG    *ICGConfig
	Div    *DividerConfig
	Inv    *InverterConfig
}

// ClockTarget is one generated output clock and its processing chain.
type ClockTarget struct {
	Name    string
	Freq    string
	ICG     *ICGConfig
	Div     *DividerConfig
	Inv     *InverterConfig
	Links   []ClockLink
	Select  string
	Reset   string
	TestClk string
	Mux     MuxConfig
}

// MuxKind resolves the combining mux kind for a multi-link target:
// explicit kind when the document named one, otherwise glitch-free iff the
// target carries a reset signal.
func (t *ClockTarget) MuxKind() MuxKind {
	if t.Mux.KindSet {
		return t.Mux.Kind
	}
	if t.Reset != "" {
		return MuxGlitchFree
	}
	return MuxStd
}

// ClockConfig is the parsed, immutable clock controller declaration.
type ClockConfig struct {
	Name    string
	TestEn  string
	RefClk  string // fallback test clock for glitch-free muxes
	Inputs  []ClockInput
	Targets []ClockTarget
}

// ResetSource is one upstream reset of the controller. Level is required.
type ResetSource struct {
	Name  string
	Level ActiveLevel
}

// ResetStage is an async/sync/count conditioning block.
// Size holds the stage count (async/sync) or the cycle count (count).
type ResetStage struct {
	Kind  StageKind
	Clock string
	Size  int
}

// ResetLink is one upstream source feeding a reset target.
type ResetLink struct {
	Source string
	Stage  *ResetStage
}

// ResetTarget is one generated reset output.
type ResetTarget struct {
	Name  string
	Level ActiveLevel
	Links []ResetLink
	Stage *ResetStage
}

// ReasonConfig describes the sticky reset-reason recorder.
type ReasonConfig struct {
	Clock  string
	Output string
	Valid  string
	Clear  string
	Root   string
	// Sources is the recorded ordering: declared sources minus the root,
	// in declaration order.
	Sources []string
}

// Width is the reason vector width, at least 1.
func (r *ReasonConfig) Width() int {
	if len(r.Sources) < 1 {
		return 1
	}
	return len(r.Sources)
}

// ResetConfig is the parsed, immutable reset controller declaration.
type ResetConfig struct {
	Name    string
	TestEn  string
	Sources []ResetSource
	Targets []ResetTarget
	Reason  *ReasonConfig
}

// SourceLevel looks up the active level of a declared source.
func (c *ResetConfig) SourceLevel(name string) (ActiveLevel, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s.Level, true
		}
	}
	return ActiveLow, false
}

// Clog2 is ceil(log2(n)) for n >= 1.
func Clog2(n int) int {
	w := 0
	for v := n - 1; v > 0; v >>= 1 {
		w++
	}
	return w
}

// SelectWidth is the select-signal width for an n-input mux, at least 1.
func SelectWidth(n int) int {
	w := Clog2(n)
	if w < 1 {
		w = 1
	}
	return w
}

// Defaults used when the document omits a field.
const (
	DefaultAsyncStage  = 3
	DefaultSyncStage   = 4
	DefaultCountCycle  = 16
	DefaultDivideValue = 2
	DefaultReasonClock = "clk_32k"
	DefaultReasonOut   = "reason"
	DefaultReasonValid = "reason_valid"
	DefaultReasonClear = "reason_clear"
)
