package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zewei/chipgen/internal/policy"
)

var lintCmd = &cobra.Command{
	Use:   "lint <design.yaml>",
	Short: "Validate and lint a design document without generating anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clk, rst, ok := loadAndParse(args[0])
		if !ok {
			return errors.New("design document rejected")
		}

		engine, err := policy.New()
		if err != nil {
			return errors.Wrap(err, "loading design rules")
		}
		result, err := engine.Evaluate(policy.BuildInput(clk, rst))
		if err != nil {
			return errors.Wrap(err, "evaluating design rules")
		}
		for _, v := range result.Violations {
			fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", v.Severity, v.Rule, v.Entity, v.Message)
		}
		fmt.Printf("%d violation(s): %d error, %d warning, %d info\n",
			result.Summary.TotalViolations, result.Summary.Errors,
			result.Summary.Warnings, result.Summary.Info)
		if result.Summary.Errors > 0 {
			return errors.New("design rules failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
