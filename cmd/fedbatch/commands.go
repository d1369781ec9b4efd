package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fedbatch/internal/config"
	"github.com/san-kum/fedbatch/internal/export"
	"github.com/san-kum/fedbatch/internal/history"
	"github.com/san-kum/fedbatch/internal/metrics"
	"github.com/san-kum/fedbatch/internal/sim"
	"github.com/san-kum/fedbatch/internal/viz"
)

func newController(cfg *config.Config) (*sim.Controller, error) {
	ctrl := sim.New(
		sim.WithLogger(log),
		sim.WithHistory(cfg.History),
		sim.WithMetrics(metrics.Default()...),
	)
	if err := ctrl.Configure(cfg.Params, cfg.Initial.Biomass, cfg.Initial.Substrate); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.ClampToBounds()

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(ctrl, cfg,
		viz.WithTheme(theme),
		viz.WithExportDir(exportDir),
		viz.WithLogger(log),
	)
	return viz.Run(m)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	runErr := ctrl.RunFor(cfg.Hours)
	log.Info("run complete",
		zap.String("run_id", ctrl.RunID()),
		zap.Int("steps", ctrl.Steps()),
		zap.Duration("wall", time.Since(start)),
	)

	printRun(os.Stdout, ctrl)
	if !noPlot {
		printPlot(os.Stdout, ctrl.History())
	}

	if err := writeExports(ctrl); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run %s stopped: %w", ctrl.RunID(), runErr)
	}
	return nil
}

func printRun(w io.Writer, ctrl *sim.Controller) {
	st := ctrl.State()
	p := ctrl.Params()

	fmt.Fprintf(w, "run %s\n", ctrl.RunID())
	fmt.Fprintf(w, "elapsed %.2f h, %d steps, dt %.4f h, volume %s\n\n", ctrl.Elapsed(), ctrl.Steps(), p.TimeStep, p.VolumePolicy)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tVALUE\tUNIT")
	fmt.Fprintf(tw, "biomass\t%.4f\tg/L\n", st.Biomass)
	fmt.Fprintf(tw, "substrate\t%.4f\tg/L\n", st.Substrate)
	fmt.Fprintf(tw, "product\t%.4f\tg/L\n", st.Product)
	fmt.Fprintf(tw, "volume\t%.4f\tL\n", st.Volume)
	tw.Flush()
	fmt.Fprintln(w)

	vals := ctrl.Metrics()
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, name := range ctrl.MetricNames() {
		fmt.Fprintf(tw, "%s\t%.4f\n", name, vals[name])
	}
	tw.Flush()
}

func printPlot(w io.Writer, series history.Series) {
	if series.Len() < 2 {
		return
	}
	chart := asciigraph.PlotMany(
		[][]float64{series.Biomass, series.Substrate, series.Product},
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption("biomass (green), substrate (red), product (blue) g/L vs time"),
	)
	fmt.Fprintf(w, "\n%s\n", chart)
}

func writeExports(ctrl *sim.Controller) error {
	run := export.FromController(ctrl)

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{csvPath, func(w io.Writer) error { return export.WriteCSV(w, run.Series) }},
		{jsonPath, func(w io.Writer) error { return export.WriteJSON(w, run) }},
		{svgPath, func(w io.Writer) error { return export.WriteSVG(w, run.Series, 800, 400) }},
	}
	for _, wr := range writers {
		if wr.path == "" {
			continue
		}
		if err := export.WriteFile(wr.path, wr.write); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", wr.path)
	}
	return nil
}

func benchRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	durations := []float64{24, 240}
	dts := []float64{0.1, 0.03, 0.01}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			c := cfg.Clone()
			c.Params.TimeStep = step
			ctrl, err := newController(c)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := ctrl.RunFor(dur); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fh\t%.2fh\t%d\t%v\t%.0f\n",
				dur, step, ctrl.Steps(), elapsed.Round(time.Microsecond),
				float64(ctrl.Steps())/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tX0\tS0\tMU_MAX\tFEED\tSF\tVOLUME\tHOURS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%.2f\t%.2f\t%.1f\t%s\t%.0f\n",
			name, p.Initial.Biomass, p.Initial.Substrate, p.Params.MaxGrowthRate,
			p.Params.FeedRate, p.Params.FeedSubstrate, p.Params.VolumePolicy, p.Hours)
	}
	return w.Flush()
}

func listBounds(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tCONTROL\tMIN\tMAX\tUNIT")
	for _, r := range config.Bounds {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%s\n", r.Key, r.Label, r.Min, r.Max, r.Unit)
	}
	return w.Flush()
}

func saveConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
