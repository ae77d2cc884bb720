// Package policy evaluates OPA design rules against parsed controller
// declarations. The rules are advisory lint; a violation never fails a
// compilation.
package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/open-policy-agent/opa/rego"

	"github.com/zewei/chipgen/internal/config"
)

//go:embed rules/*.rego
var rulesFS embed.FS

// Engine evaluates the embedded design rules.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation is one triggered rule.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Entity   string `json:"entity"`
	Message  string `json:"message"`
}

// Summary provides aggregate counts.
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Result contains the evaluation results.
type Result struct {
	Violations []Violation
	Summary    Summary
}

// Input is the fact view of the declarations passed to OPA.
type Input struct {
	ClockInputs  []ClockInputFact  `json:"clock_inputs"`
	ClockTargets []ClockTargetFact `json:"clock_targets"`
	Dividers     []DividerFact     `json:"dividers"`
	ResetSources []ResetSourceFact `json:"reset_sources"`
	ResetTargets []ResetTargetFact `json:"reset_targets"`
}

type ClockInputFact struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
}

type ClockTargetFact struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
	Links      int    `json:"links"`
	MuxKind    string `json:"mux_kind"`
	TestClk    string `json:"test_clk"`
}

type DividerFact struct {
	Owner      string `json:"owner"`
	Controller string `json:"controller"`
	Default    int    `json:"default"`
	Width      int    `json:"width"`
	Dynamic    bool   `json:"dynamic"`
}

type ResetSourceFact struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
	Level      string `json:"level"`
}

type ResetTargetFact struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
	Level      string `json:"level"`
	Links      int    `json:"links"`
}

// BuildInput flattens the declarations into fact tables. Either config may
// be nil.
func BuildInput(clk *config.ClockConfig, rst *config.ResetConfig) Input {
	in := Input{
		ClockInputs:  []ClockInputFact{},
		ClockTargets: []ClockTargetFact{},
		Dividers:     []DividerFact{},
		ResetSources: []ResetSourceFact{},
		ResetTargets: []ResetTargetFact{},
	}
	if clk != nil {
		for _, c := range clk.Inputs {
			in.ClockInputs = append(in.ClockInputs, ClockInputFact{Name: c.Name, Controller: clk.Name})
		}
		for ti := range clk.Targets {
			t := &clk.Targets[ti]
			kind := ""
			if len(t.Links) >= 2 {
				kind = t.MuxKind().String()
			}
			in.ClockTargets = append(in.ClockTargets, ClockTargetFact{
				Name:       t.Name,
				Controller: clk.Name,
				Links:      len(t.Links),
				MuxKind:    kind,
				TestClk:    t.TestClk,
			})
			addDiv := func(d *config.DividerConfig, owner string) {
				if d == nil {
					return
				}
				in.Dividers = append(in.Dividers, DividerFact{
					Owner:      owner,
					Controller: clk.Name,
					Default:    d.Default,
					Width:      d.EffectiveWidth(),
					Dynamic:    d.Dynamic(),
				})
			}
			addDiv(t.Div, "target "+t.Name)
			for li := range t.Links {
				addDiv(t.Links[li].Div, fmt.Sprintf("target %s link %s", t.Name, t.Links[li].Source))
			}
		}
	}
	if rst != nil {
		for _, s := range rst.Sources {
			in.ResetSources = append(in.ResetSources, ResetSourceFact{
				Name: s.Name, Controller: rst.Name, Level: s.Level.String(),
			})
		}
		for ti := range rst.Targets {
			t := &rst.Targets[ti]
			in.ResetTargets = append(in.ResetTargets, ResetTargetFact{
				Name: t.Name, Controller: rst.Name, Level: t.Level.String(), Links: len(t.Links),
			})
		}
	}
	return in
}

// New prepares the embedded rule queries.
func New() (*Engine, error) {
	engine := &Engine{queries: make(map[string]rego.PreparedEvalQuery)}

	var modules []func(*rego.Rego)
	err := fs.WalkDir(rulesFS, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := rulesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		modules = append(modules, rego.Module(path, string(content)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading embedded rules: %w", err)
	}

	opts := append(modules, rego.Query("data.chipgen.design.all_violations"))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	engine.queries["violations"] = query

	opts = append(modules, rego.Query("data.chipgen.design.summary"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}
	engine.queries["summary"] = query

	return engine, nil
}

// Evaluate runs the design rules against the input facts.
func (e *Engine) Evaluate(input Input) (*Result, error) {
	ctx := context.Background()

	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Entity:   getString(vmap, "entity"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
