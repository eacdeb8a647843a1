package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// Simulator owns the double buffer and the step/time bookkeeping for one
// run configuration.
type Simulator struct {
	cfg       Config
	sched     *Scheduler
	logger    *slog.Logger
	observers []Observer
	buf       [2]Ensemble
}

// New validates cfg and builds a simulator. The executor is borrowed; the
// caller keeps ownership and releases it.
func New(cfg Config, field ForceField, integ Integrator, box Boundary, exec Executor, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil || integ == nil || box == nil || exec == nil {
		return nil, fmt.Errorf("%w: force field, integrator, boundary and executor are required", ErrInvalidConfig)
	}

	s := &Simulator{
		cfg:    cfg,
		sched:  NewScheduler(field, integ, box, exec, cfg.Dt),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		buf:    [2]Ensemble{make(Ensemble, cfg.N), make(Ensemble, cfg.N)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

// Run emits the initial ensemble at step 0, then advances ceil(TMax/Dt)
// steps, emitting every committed ensemble. On error the returned Result
// describes the last committed step.
func (s *Simulator) Run(ctx context.Context, initial Ensemble, out Output) (*Result, error) {
	if len(initial) != s.cfg.N {
		return nil, fmt.Errorf("%w: expected %d particles, got %d", ErrEnsembleSize, s.cfg.N, len(initial))
	}
	if i, ok := initial.IsValid(); !ok {
		return nil, &SimulationError{Particle: i, State: initial[i], Wrapped: ErrDivergence}
	}

	old, next := s.buf[0], s.buf[1]
	copy(old, initial)

	total := s.cfg.TotalSteps()
	result := &Result{}

	if err := out.Emit(0, 0, old); err != nil {
		return nil, &SimulationError{Particle: -1, Wrapped: fmt.Errorf("emit initial state: %w", err)}
	}

	s.logger.Info("simulation started",
		slog.Int("particles", s.cfg.N),
		slog.Int("steps", total),
		slog.Float64("dt", s.cfg.Dt),
		slog.Float64("box_size", s.cfg.BoxSize))
	start := time.Now()

	for step := 0; step < total; {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		stats, err := s.sched.Step(old, next)
		if err != nil {
			return result, s.stepError(step+1, err)
		}

		old, next = next, old
		step++
		t := float64(step) * s.cfg.Dt

		result.Steps = step
		result.Time = t
		result.Bounces += stats.Bounces

		if err := out.Emit(step, t, old); err != nil {
			return result, &SimulationError{Step: step, Time: t, Particle: -1, Wrapped: fmt.Errorf("emit: %w", err)}
		}
		for _, obs := range s.observers {
			obs.OnStep(step, t, old, stats)
		}

		elapsed := time.Since(start)
		eta := elapsed / time.Duration(step) * time.Duration(total-step)
		s.logger.Debug("step completed",
			slog.Int("step", step),
			slog.Int("total", total),
			slog.Float64("t", t),
			slog.Duration("elapsed", elapsed),
			slog.Duration("eta", eta))
	}

	result.Final = old.Clone()
	s.logger.Info("simulation completed",
		slog.Int("steps", result.Steps),
		slog.Int("bounces", result.Bounces),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (s *Simulator) stepError(step int, err error) error {
	t := float64(step) * s.cfg.Dt

	var se *SimulationError
	if errors.As(err, &se) {
		se.Step = step
		se.Time = t
		return se
	}
	return &SimulationError{Step: step, Time: t, Particle: -1, Wrapped: fmt.Errorf("%w: %w", ErrTaskFailed, err)}
}
