package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/boxsim/internal/config"
)

var (
	dataDir  string
	logLevel string
	envFile  string

	configFile string
	preset     string
	particles  int
	boxSize    float64
	dt         float64
	tMax       float64
	vMax       float64
	seed       int64
	workers    int
	force      string
	strength   float64
	softening  float64
	stiffness  float64

	textOut     string
	sqliteOut   string
	noStore     bool
	metricsAddr string

	outFile  string
	particle int
	step     int
	svgSize  int
)

// main registers the boxsim commands and exits through atexit so that
// registered cleanups run on every path.
func main() {
	rootCmd := &cobra.Command{
		Use:           "boxsim",
		Short:         "particles in a box with wall reflection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with BOXSIM_* overrides")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&textOut, "out", config.DefaultOutput, "text step log (empty to disable)")
	runCmd.Flags().StringVar(&sqliteOut, "sqlite", "", "also record frames into this SQLite file")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not create a run directory")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|file.txt|file.sqlite3]",
		Short: "plot energy and momentum of a recording",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", -1, "also plot the trajectory of this particle")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id|file.txt|file.sqlite3]",
		Short: "render one recorded step, or a particle trajectory, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&step, "step", -1, "step to render (default: last)")
	snapshotCmd.Flags().IntVar(&particle, "particle", -1, "draw this particle's trajectory instead")
	snapshotCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	snapshotCmd.Flags().Float64Var(&boxSize, "box", 0, "box side length (default: from run metadata or particle extent)")
	snapshotCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, snapshotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of particles")
	cmd.Flags().Float64Var(&boxSize, "box", config.DefaultBoxSize, "box side length")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&tMax, "time", config.DefaultTMax, "simulated duration")
	cmd.Flags().Float64Var(&vMax, "vmax", config.DefaultVMax, "initial speed bound per component")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	cmd.Flags().StringVar(&force, "force", config.DefaultForce, "force law (free, inverse_square, harmonic)")
	cmd.Flags().Float64Var(&strength, "strength", 0, "inverse_square strength, positive repels")
	cmd.Flags().Float64Var(&softening, "softening", config.DefaultSoftening, "inverse_square softening length")
	cmd.Flags().Float64Var(&stiffness, "stiffness", 0, "harmonic spring constant")
}

// resolveConfig layers preset, config file, environment and changed flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("box") {
		cfg.BoxSize = boxSize
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.TMax = tMax
	}
	if flags.Changed("vmax") {
		cfg.VMax = vMax
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("force") {
		cfg.Force.Law = force
	}
	if flags.Changed("strength") {
		cfg.Force.Strength = strength
	}
	if flags.Changed("softening") {
		cfg.Force.Softening = softening
	}
	if flags.Changed("stiffness") {
		cfg.Force.Stiffness = stiffness
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		cfg.Output.Text = textOut
	}
	if flags.Lookup("sqlite") != nil && flags.Changed("sqlite") {
		cfg.Output.SQLite = sqliteOut
	}
	if cmd.Root().PersistentFlags().Changed("data") {
		cfg.Output.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
