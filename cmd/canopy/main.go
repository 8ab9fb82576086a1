// Command canopy inspects and runs canopy scene documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Lay out, check and run canopy scenes",
		Long: `canopy works with scene documents: YAML files describing an entity
tree with ids, classes and inline styles, plus the stylesheets that
style it.

  • layout   resolve styles, run layout and print the geometry
  • check    parse stylesheets and report errors
  • run      open a scene in a window, or replay a test script headless`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		layoutCmd(),
		checkCmd(),
		runCmd(),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", newTheme(os.Stderr).fail.Render("Error:"), err)
		os.Exit(1)
	}
}
