package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/boxsim/internal/config"
	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/integrators"
	"github.com/san-kum/boxsim/internal/physics"
)

type Registry struct {
	forces      map[string]func(config.ForceConfig) dynamo.ForceField
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		forces:      make(map[string]func(config.ForceConfig) dynamo.ForceField),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.forces["free"] = func(config.ForceConfig) dynamo.ForceField { return physics.Free{} }
	r.forces["inverse_square"] = func(fc config.ForceConfig) dynamo.ForceField {
		return physics.NewInverseSquare(fc.Strength, fc.Softening)
	}
	r.forces["harmonic"] = func(fc config.ForceConfig) dynamo.ForceField {
		return physics.NewHarmonic(fc.Stiffness)
	}

	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

// RegisterForce adds or replaces a force law.
func (r *Registry) RegisterForce(name string, fn func(config.ForceConfig) dynamo.ForceField) {
	r.forces[name] = fn
}

func (r *Registry) GetForce(fc config.ForceConfig) (dynamo.ForceField, error) {
	fn, ok := r.forces[fc.Law]
	if !ok {
		return nil, fmt.Errorf("unknown force law: %s", fc.Law)
	}
	return fn(fc), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListForces() []string {
	names := make([]string, 0, len(r.forces))
	for name := range r.forces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
