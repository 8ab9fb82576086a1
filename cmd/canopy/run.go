package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/ebitenhost"
	"github.com/phanxgames/canopy/metrics"
)

func runCmd() *cobra.Command {
	var (
		script      string
		maxCycles   int
		dt          time.Duration
		metricsAddr string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "run <scene.yaml>",
		Short: "Open a scene in a window or replay a script headless",
		Long: `Without --script the scene opens in a window with a debug painter.

With --script the JSON test script is replayed headless against the scene:
one injected input per cycle, expectations checked as they are reached.
The command fails if any expectation fails or the script does not finish
within --max-cycles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScene(args[0])
			if err != nil {
				return err
			}
			if debug {
				sc.Config.Debug = true
			}

			var opts []canopy.Option
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				opts = append(opts, canopy.WithObserver(metrics.New(metrics.WithRegistry(reg))))
				srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
					}
				}()
				defer srv.Close()
			}

			cx, err := sc.Build(opts...)
			if err != nil {
				return err
			}

			if script == "" {
				return ebitenhost.Run(cx, ebitenhost.WithTitle("canopy - "+filepath.Base(args[0])))
			}

			data, err := os.ReadFile(script)
			if err != nil {
				return fmt.Errorf("load script: %w", err)
			}
			runner, err := canopy.LoadScript(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			th := newTheme(out)
			// Settle the first layout so scripted pointers hit real geometry.
			cx.Update(0)
			start := cx.LastStats().Cycle
			err = runner.Run(cx, dt, maxCycles)
			for _, e := range runner.Errors() {
				fmt.Fprintf(out, "%s %v\n", th.fail.Render("✗"), e)
			}
			if err != nil {
				return fmt.Errorf("script %s failed", script)
			}
			fmt.Fprintf(out, "%s %s passed %s\n", th.ok.Render("✓"), script,
				th.dim.Render(fmt.Sprintf("in %d cycles", cx.LastStats().Cycle-start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "Replay a JSON test script headless")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 600, "Fail a script that has not finished after this many cycles")
	cmd.Flags().DurationVar(&dt, "dt", time.Second/60, "Time advanced per scripted cycle")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Print per-cycle stats and warnings to stderr")

	return cmd
}
