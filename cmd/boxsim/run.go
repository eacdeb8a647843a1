package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/boxsim/internal/boundary"
	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/experiment"
	"github.com/san-kum/boxsim/internal/metrics"
	"github.com/san-kum/boxsim/internal/storage"
	"github.com/san-kum/boxsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if wd, err := os.Getwd(); err == nil {
		logger.Info("working directory", slog.String("path", wd))
	}

	var outputs storage.Multi
	defer func() {
		if err := outputs.Close(); err != nil {
			logger.Error("closing outputs", slog.String("error", err.Error()))
		}
	}()

	if cfg.Output.Text != "" {
		tw, err := storage.CreateTextFile(cfg.Output.Text)
		if err != nil {
			return err
		}
		outputs = append(outputs, tw)
		abs, _ := filepath.Abs(tw.Path())
		logger.Info("writing step log", slog.String("path", abs))
	}

	var st *storage.Store
	var rec *storage.Recorder
	if !noStore {
		st = storage.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		rec, err = st.Create(storage.RunMetadata{
			Preset:    preset,
			Force:     cfg.Force.Law,
			Seed:      cfg.Seed,
			Particles: cfg.Particles,
			BoxSize:   cfg.BoxSize,
			Dt:        cfg.Dt,
			TMax:      cfg.TMax,
			VMax:      cfg.VMax,
			Workers:   cfg.Workers,
		})
		if err != nil {
			return err
		}
		outputs = append(outputs, rec)
		logger.Info("recording run", slog.String("run_id", rec.ID()), slog.String("dir", st.Dir(rec.ID())))
	}

	if cfg.Output.SQLite != "" {
		sq, err := storage.OpenSQLite(cfg.Output.SQLite)
		if err != nil {
			return err
		}
		outputs = append(outputs, sq)
		logger.Info("recording frames to sqlite", slog.String("path", cfg.Output.SQLite))
	}

	registry := experiment.NewRegistry()
	field, err := registry.GetForce(cfg.Force)
	if err != nil {
		return err
	}

	drift := metrics.NewEnergyDrift(field)
	containment := metrics.NewContainment(boundary.NewSquare(cfg.BoxSize))
	observers := []metrics.Metric{drift, containment, metrics.NewBounceRate(), metrics.NewEnergy(field)}

	opts := []experiment.Option{experiment.WithLogger(logger), experiment.WithRegistry(registry)}
	for _, o := range observers {
		opts = append(opts, experiment.WithObserver(o))
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, experiment.WithObserver(metrics.NewRecorder(reg)))
		srv, err := metrics.Serve(metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		atexit.Register(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	}

	exp, err := experiment.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, runErr := exp.Run(ctx, outputs)
	elapsed := time.Since(start)

	summary := metrics.Summary(observers...)
	if res != nil {
		summary["kinetic_energy"] = metrics.KineticEnergy(res.Final)
	}
	if st != nil {
		if err := st.Finish(rec.ID(), res, runErr, summary); err != nil {
			logger.Error("saving run metadata", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("simulation interrupted", slog.Int("steps", stepsOf(res)))
		}
		return runErr
	}

	logger.Info("simulation completed", slog.Duration("elapsed", elapsed))

	fields := []viz.Field{
		{Label: "Steps", Value: res.Steps},
		{Label: "Sim time", Value: res.Time},
		{Label: "Wall time", Value: elapsed.Round(time.Millisecond)},
		{Label: "Bounces", Value: res.Bounces},
		{Label: "Energy drift", Value: drift.Value()},
		{Label: "Containment", Value: containment.Value()},
	}
	if rec != nil {
		fields = append([]viz.Field{{Label: "Run ID", Value: rec.ID()}}, fields...)
	}
	fmt.Println(viz.Summary("boxsim: "+cfg.Force.Law, fields...))
	return nil
}

func stepsOf(res *dynamo.Result) int {
	if res == nil {
		return 0
	}
	return res.Steps
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := viz.NewStream(1)
	title := cfg.Force.Law
	if preset != "" {
		title = preset
	}
	p := tea.NewProgram(viz.NewModel(title, stream, cfg.BoxSize, cfg.Run().TotalSteps()))

	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		var res *dynamo.Result
		res, runErr = exp.Run(ctx, stream)
		stream.Close()
		p.Send(viz.DoneMsg{Result: res, Err: runErr})
	}()

	_, err = p.Run()
	stream.Detach()
	cancel()
	<-done
	if err != nil {
		return err
	}
	return liveError(runErr)
}

// liveError is the exit error of a live run. Leaving the view before the
// simulation finishes cancels it, which is not a failure.
func liveError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
