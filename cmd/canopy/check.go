package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/canopy"
)

func checkCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <file.css>...",
		Short: "Parse stylesheets and report errors",
		Long: `Parse each stylesheet the way a Context would. Invalid values and
selectors fail the sheet; unknown properties are reported as warnings
(errors with --strict).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			th := newTheme(out)
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", th.fail.Render("✗"), path, err)
					continue
				}
				sheet, err := canopy.ParseStyleSheet(string(data))
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", th.fail.Render("✗"), path, err)
					continue
				}
				for _, name := range sheet.Skipped {
					fmt.Fprintf(out, "%s %s: unknown property %q\n", th.warn.Render("⚠"), path, name)
				}
				if strict && len(sheet.Skipped) > 0 {
					failed++
					continue
				}
				fmt.Fprintf(out, "%s %s %s\n", th.ok.Render("✓"), path,
					th.dim.Render(fmt.Sprintf("%d rules, %d keyframes", len(sheet.Rules), len(sheet.Keyframes))))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d stylesheets failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unknown properties as errors")

	return cmd
}
