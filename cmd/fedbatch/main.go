package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fedbatch/internal/config"
	"github.com/san-kum/fedbatch/internal/models"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFile    string

	x0, s0     float64
	muMax, ks  float64
	yxs, ypx   float64
	feed, sf   float64
	dt         float64
	volume     string
	hours      float64
	historyCap int
	stride     int
	frameRate  int
	theme      string
	exportDir  string
	csvPath    string
	jsonPath   string
	svgPath    string
	noPlot     bool

	env config.Env

	log = zap.NewNop()
)

// main registers the fedbatch commands and runs the live view when no
// subcommand is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "fedbatch",
		Short:             "interactive fed-batch bioreactor simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runLive,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = log.Sync() },
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.Float64Var(&x0, "x0", models.DefaultInitialBiomass, "initial biomass (g/L)")
	pf.Float64Var(&s0, "s0", models.DefaultInitialSubstrate, "initial substrate (g/L)")
	pf.Float64Var(&muMax, "mu-max", models.DefaultMaxGrowthRate, "maximum specific growth rate (1/h)")
	pf.Float64Var(&ks, "ks", models.DefaultHalfSaturation, "half-saturation constant (g/L)")
	pf.Float64Var(&yxs, "yxs", models.DefaultBiomassYield, "biomass yield on substrate")
	pf.Float64Var(&ypx, "ypx", models.DefaultProductYield, "product yield on biomass")
	pf.Float64Var(&feed, "feed", models.DefaultFeedRate, "feed rate (L/h)")
	pf.Float64Var(&sf, "sf", models.DefaultFeedSubstrate, "feed substrate concentration (g/L)")
	pf.Float64Var(&dt, "dt", models.DefaultTimeStep, "timestep (h)")
	pf.StringVar(&volume, "volume", "growing", "volume policy (growing, constant)")
	pf.IntVar(&historyCap, "history-cap", 0, "keep only the newest N samples (0 = unbounded)")
	pf.IntVar(&stride, "stride", 1, "record every Nth step")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the interactive reactor view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
		c.Flags().StringVar(&theme, "theme", "lab", "colour theme")
		c.Flags().StringVar(&exportDir, "export-dir", ".", "directory for runs exported from the live view")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation headless and print the result",
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&hours, "hours", config.DefaultHours, "simulated duration (h)")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write the history to this CSV file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the run summary to this JSON file")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write a chart of the history to this SVG file")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal plot")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark integration speed",
		RunE:  benchRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "list slider ranges",
		RunE:  listBounds,
	}

	saveCmd := &cobra.Command{
		Use:   "save-config [path]",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  saveConfig,
	}
	saveCmd.Flags().Float64Var(&hours, "hours", config.DefaultHours, "simulated duration (h)")

	rootCmd.AddCommand(liveCmd, runCmd, benchCmd, presetsCmd, boundsCmd, saveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env, reads FEDBATCH_* variables and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	env = config.ApplyEnv(os.Getenv)

	level := logLevel
	if !cmd.Flags().Changed("log-level") && env.LogLevel != "" {
		level = env.LogLevel
	}
	interactive := cmd.Name() == "live" || cmd == cmd.Root()

	l, err := newLogger(level, logFile, interactive)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// newLogger writes to logFile when set. Otherwise interactive sessions get a
// no-op logger, since the terminal belongs to the TUI, and headless commands
// log to stderr.
func newLogger(level, logFile string, interactive bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	switch {
	case logFile != "":
		cfg := zap.NewProductionConfig()
		cfg.Level = lvl
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
		return cfg.Build()
	case interactive:
		return zap.NewNop(), nil
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = lvl
		cfg.DisableStacktrace = true
		return cfg.Build()
	}
}

// resolveConfig layers defaults, the preset, the config file and finally any
// flags the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := preset
	if name == "" {
		name = env.Preset
	}
	if name != "" {
		p := config.GetPreset(name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		cfg = p
	}

	path := configFile
	if path == "" {
		path = env.ConfigPath
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("x0") {
		cfg.Initial.Biomass = x0
	}
	if flags.Changed("s0") {
		cfg.Initial.Substrate = s0
	}
	if flags.Changed("mu-max") {
		cfg.Params.MaxGrowthRate = muMax
	}
	if flags.Changed("ks") {
		cfg.Params.HalfSaturation = ks
	}
	if flags.Changed("yxs") {
		cfg.Params.BiomassYield = yxs
	}
	if flags.Changed("ypx") {
		cfg.Params.ProductYield = ypx
	}
	if flags.Changed("feed") {
		cfg.Params.FeedRate = feed
	}
	if flags.Changed("sf") {
		cfg.Params.FeedSubstrate = sf
	}
	if flags.Changed("dt") {
		cfg.Params.TimeStep = dt
	}
	if flags.Changed("volume") {
		p, err := models.ParseVolumePolicy(volume)
		if err != nil {
			return nil, err
		}
		cfg.Params.VolumePolicy = p
	}
	if flags.Changed("history-cap") {
		cfg.History.Capacity = historyCap
	}
	if flags.Changed("stride") {
		cfg.History.Stride = stride
	}
	if flags.Changed("hours") {
		cfg.Hours = hours
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug("configuration resolved",
		zap.String("preset", name),
		zap.String("config", path),
		zap.Float64("hours", cfg.Hours),
		zap.Stringer("volume", cfg.Params.VolumePolicy),
	)
	return cfg, nil
}
