// =============================================================================
// chipgen - SoC clock/reset controller generator
// =============================================================================
//
// THE PIPELINE:
//   1. The YAML design document is decoded into a generic node tree
//   2. The CUE validator enforces the document contract (reject early)
//   3. Typed parsing builds the immutable clock/reset configs
//   4. OPA design rules lint the configs (advisory only)
//   5. The compilers emit controller netlists, the primitive-cell
//      libraries, and Typst schematics into the project output directory
//
// The netlist is the product. Schematic and primitive-library failures are
// warnings; the netlist is kept.
// =============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chipgen",
	Short: "Generate SoC clock/reset controller RTL from a YAML design document",
	Long: `chipgen compiles a declarative clock-and-reset design document into
synthesizable Verilog controllers, a primitive-cell library, and Typst
schematics.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
