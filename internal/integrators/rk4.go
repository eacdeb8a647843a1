package integrators

import "github.com/san-kum/boxsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. It keeps no state
// between calls and may be shared by any number of goroutines.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

// Increment returns h/6*(k1 + 2k2 + 2k3 + k4). Every stage is evaluated
// against the same snapshot; only the particle's own state advances
// between stages.
func (r *RK4) Increment(f dynamo.ForceField, x dynamo.State, snapshot dynamo.Ensemble, index int, h float64) dynamo.State {
	k1 := f.Evaluate(x, snapshot, index)
	k2 := f.Evaluate(x.AddScaled(h*0.5, k1), snapshot, index)
	k3 := f.Evaluate(x.AddScaled(h*0.5, k2), snapshot, index)
	k4 := f.Evaluate(x.AddScaled(h, k3), snapshot, index)

	var inc dynamo.State
	h6 := h / 6.0
	for i := range inc {
		inc[i] = h6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
	return inc
}
