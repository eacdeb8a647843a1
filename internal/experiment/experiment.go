package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/san-kum/boxsim/internal/boundary"
	"github.com/san-kum/boxsim/internal/compute"
	"github.com/san-kum/boxsim/internal/config"
	"github.com/san-kum/boxsim/internal/dynamo"
)

// Starter is implemented by observers that need the initial ensemble
// before the first step.
type Starter interface {
	Start(initial dynamo.Ensemble)
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithObserver(o dynamo.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// Experiment turns a file configuration into one complete run: it samples
// the initial ensemble, owns the worker pool and drives the simulator.
type Experiment struct {
	cfg        config.Config
	registry   *Registry
	logger     *slog.Logger
	observers  []dynamo.Observer
	randSource *rand.Rand
	field      dynamo.ForceField
	initial    dynamo.Ensemble
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:        *cfg,
		registry:   NewRegistry(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(e)
	}

	field, err := e.registry.GetForce(cfg.Force)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	e.field = field
	e.initial = Sample(cfg.Run(), e.randSource)
	return e, nil
}

// Field is the force law selected by the configuration.
func (e *Experiment) Field() dynamo.ForceField { return e.field }

// Initial returns a copy of the sampled starting ensemble.
func (e *Experiment) Initial() dynamo.Ensemble { return e.initial.Clone() }

// Run simulates the configured system into out. The worker pool lives for
// exactly this call. out is not closed.
func (e *Experiment) Run(ctx context.Context, out dynamo.Output) (*dynamo.Result, error) {
	run := e.cfg.Run()

	integ, err := e.registry.GetIntegrator("rk4")
	if err != nil {
		return nil, err
	}

	var exec dynamo.Executor = compute.Serial{}
	workers := 1
	if run.N > 1 {
		pool := compute.NewPool(e.cfg.Workers)
		defer pool.Close()
		exec = pool
		workers = pool.Workers()
	}

	opts := []dynamo.Option{dynamo.WithLogger(e.logger)}
	for _, o := range e.observers {
		if s, ok := o.(Starter); ok {
			s.Start(e.initial)
		}
		opts = append(opts, dynamo.WithObserver(o))
	}

	sim, err := dynamo.New(run, e.field, integ, boundary.NewSquare(run.BoxSize), exec, opts...)
	if err != nil {
		return nil, err
	}

	e.logger.Info("experiment configured",
		slog.String("force", e.cfg.Force.Law),
		slog.Int64("seed", e.cfg.Seed),
		slog.Int("workers", workers))

	return sim.Run(ctx, e.initial, out)
}

// Sample draws positions uniformly in [0, BoxSize] and velocity components
// uniformly in [-VMax, VMax], in x, y, vx, vy order per particle.
func Sample(cfg dynamo.Config, rng *rand.Rand) dynamo.Ensemble {
	e := make(dynamo.Ensemble, cfg.N)
	for i := range e {
		x := rng.Float64() * cfg.BoxSize
		y := rng.Float64() * cfg.BoxSize
		vx := (2*rng.Float64() - 1) * cfg.VMax
		vy := (2*rng.Float64() - 1) * cfg.VMax
		e[i] = dynamo.NewState(x, y, vx, vy)
	}
	return e
}
