package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zewei/chipgen/internal/clockgen"
	"github.com/zewei/chipgen/internal/config"
	"github.com/zewei/chipgen/internal/policy"
	"github.com/zewei/chipgen/internal/project"
	"github.com/zewei/chipgen/internal/resetgen"
	"github.com/zewei/chipgen/internal/validator"
)

var genFlags struct {
	outDir      string
	forceCells  bool
	noSchematic bool
	noLint      bool
}

var genCmd = &cobra.Command{
	Use:   "gen <design.yaml>",
	Short: "Compile a design document into controller RTL, cells and schematics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGen(args[0])
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	flag := genCmd.Flags()
	flag.StringVarP(&genFlags.outDir, "out", "o", ".", "project output directory")
	flag.BoolVar(&genFlags.forceCells, "force-cells", false, "rewrite primitive-cell libraries even when complete")
	flag.BoolVar(&genFlags.noSchematic, "no-schematic", false, "skip schematic generation")
	flag.BoolVar(&genFlags.noLint, "no-lint", false, "skip design-rule lint")
	genCmd.MarkFlagDirname("out")
}

func runGen(path string) error {
	clk, rst, ok := loadAndParse(path)
	if !ok {
		return errors.New("design document rejected")
	}

	if !genFlags.noLint {
		lintConfigs(clk, rst)
	}

	proj, err := project.New(genFlags.outDir)
	if err != nil {
		return err
	}

	if clk != nil {
		opts := clockgen.Options{ForceCells: genFlags.forceCells, NoSchematic: genFlags.noSchematic}
		if err := clockgen.Generate(clk, proj, opts); err != nil {
			return errors.Wrapf(err, "clock controller %s", clk.Name)
		}
		fmt.Printf("generated %s\n", proj.File(clk.Name+".v"))
	}
	if rst != nil {
		opts := resetgen.Options{ForceCells: genFlags.forceCells, NoSchematic: genFlags.noSchematic}
		if err := resetgen.Generate(rst, proj, opts); err != nil {
			return errors.Wrapf(err, "reset controller %s", rst.Name)
		}
		fmt.Printf("generated %s\n", proj.File(rst.Name+".v"))
	}
	return nil
}

// loadAndParse runs the front half of the pipeline: decode, schema
// validation, typed parsing. It reports every problem it can find before
// deciding success.
func loadAndParse(path string) (*config.ClockConfig, *config.ResetConfig, bool) {
	doc, err := config.LoadDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, false
	}
	if doc.Clock == nil && doc.Reset == nil {
		fmt.Fprintf(os.Stderr, "error: %s declares neither clock: nor reset:\n", path)
		return nil, nil, false
	}

	v, err := validator.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, false
	}
	if errs := v.ValidationErrors(doc.Raw); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "schema: %s\n", e)
		}
		return nil, nil, false
	}

	diag := &config.Diagnostics{}
	var clk *config.ClockConfig
	var rst *config.ResetConfig
	if doc.Clock != nil {
		clk = config.ParseClock(doc.Clock, diag)
	}
	if doc.Reset != nil {
		rst = config.ParseReset(doc.Reset, diag)
	}
	diag.Report(os.Stderr)
	if !diag.OK() {
		return nil, nil, false
	}
	return clk, rst, true
}

// lintConfigs runs the OPA design rules. Lint problems never block
// generation.
func lintConfigs(clk *config.ClockConfig, rst *config.ResetConfig) {
	engine, err := policy.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: design lint unavailable: %v\n", err)
		return
	}
	result, err := engine.Evaluate(policy.BuildInput(clk, rst))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: design lint failed: %v\n", err)
		return
	}
	for _, v := range result.Violations {
		fmt.Fprintf(os.Stderr, "lint %s [%s] %s: %s\n", v.Severity, v.Rule, v.Entity, v.Message)
	}
}
