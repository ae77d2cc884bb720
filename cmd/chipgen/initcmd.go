package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterDesign = `# chipgen design document
#
# Two top-level declarations are recognized: clock and reset. Unknown keys
# are ignored; delete whichever controller you do not need.

clock:
  name: clkctrl
  test_en: test_en
  inputs:
    - name: osc_24m
      freq: 24MHz
    - name: clk_32k
      freq: 32kHz
  targets:
    - name: clk_core
      freq: 12MHz
      links:
        - source: osc_24m
          div:
            default: 2
    - name: clk_lp
      select: lp_sel
      rst: lp_mux_rst_n
      links:
        - source: osc_24m
        - source: clk_32k

reset:
  name: rstctrl
  test_en: test_en
  sources:
    - name: por_n
      level: low
    - name: wdt_rst
      level: high
  targets:
    - name: soc_rst_n
      level: low
      async:
        clk: clk_32k
        stage: 3
      links:
        - source: por_n
        - source: wdt_rst
  reason:
    root: por_n
    clk: clk_32k
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter chipgen.yaml design document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "chipgen.yaml"
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.WriteFile(path, []byte(starterDesign), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("Created %s\n", path)
		fmt.Println("\nEdit the document, then run:")
		fmt.Println("  chipgen gen chipgen.yaml -o rtl/")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing chipgen.yaml")
}
