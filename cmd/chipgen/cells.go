package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zewei/chipgen/internal/cells"
	"github.com/zewei/chipgen/internal/project"
)

var cellsFlags struct {
	outDir string
	kind   string
	force  bool
}

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Materialize the primitive-cell libraries standalone",
	Long: `Writes clock_cell.v and/or reset_cell.v into the output directory.
Existing files gain only their missing cells; --force rewrites from scratch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := project.New(cellsFlags.outDir)
		if err != nil {
			return err
		}
		var kinds []cells.Kind
		switch cellsFlags.kind {
		case "clock":
			kinds = []cells.Kind{cells.Clock}
		case "reset":
			kinds = []cells.Kind{cells.Reset}
		case "both":
			kinds = []cells.Kind{cells.Clock, cells.Reset}
		default:
			return fmt.Errorf("invalid --kind %q (want clock, reset or both)", cellsFlags.kind)
		}
		for _, k := range kinds {
			if err := cells.Ensure(proj.OutputPath(), k, cellsFlags.force, proj); err != nil {
				return err
			}
			fmt.Printf("ensured %s\n", proj.File(k.FileName()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cellsCmd)
	flag := cellsCmd.Flags()
	flag.StringVarP(&cellsFlags.outDir, "out", "o", ".", "project output directory")
	flag.StringVar(&cellsFlags.kind, "kind", "both", "library to materialize: clock, reset or both")
	flag.BoolVar(&cellsFlags.force, "force", false, "rewrite even when the file is complete")
}
