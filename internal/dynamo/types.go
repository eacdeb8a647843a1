package dynamo

import (
	"fmt"
	"math"
)

// Component indices into a State.
const (
	PosX = iota
	PosY
	VelX
	VelY
)

// State is a single particle: position followed by velocity.
type State [4]float64

func NewState(x, y, vx, vy float64) State {
	return State{x, y, vx, vy}
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Add(other State) State {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

func (s State) Scale(factor float64) State {
	for i := range s {
		s[i] *= factor
	}
	return s
}

// AddScaled returns s + factor*other.
func (s State) AddScaled(factor float64, other State) State {
	for i := range s {
		s[i] += factor * other[i]
	}
	return s
}

func (s State) Position() (x, y float64) { return s[PosX], s[PosY] }
func (s State) Velocity() (vx, vy float64) { return s[VelX], s[VelY] }

func (s State) Speed() float64 {
	return math.Hypot(s[VelX], s[VelY])
}

func (s State) String() string {
	return fmt.Sprintf("(%g, %g | %g, %g)", s[PosX], s[PosY], s[VelX], s[VelY])
}

// Ensemble holds every particle at one instant. The index is the particle's identity.
type Ensemble []State

func (e Ensemble) Clone() Ensemble {
	c := make(Ensemble, len(e))
	copy(c, e)
	return c
}

// IsValid reports whether every state is finite. On failure it also returns
// the index of the first offending particle.
func (e Ensemble) IsValid() (int, bool) {
	for i, s := range e {
		if !s.IsValid() {
			return i, false
		}
	}
	return -1, true
}

// Wall identifies one side of the box. The declaration order is the
// tie-break priority when a segment reaches several walls at once.
type Wall int

const (
	WallLeft Wall = iota
	WallRight
	WallBottom
	WallTop
)

var wallNames = [...]string{"left", "right", "bottom", "top"}

func (w Wall) String() string {
	if w < WallLeft || w > WallTop {
		return fmt.Sprintf("Wall(%d)", int(w))
	}
	return wallNames[w]
}

// Axis returns the velocity component normal to the wall.
func (w Wall) Axis() int {
	if w == WallLeft || w == WallRight {
		return VelX
	}
	return VelY
}

// Crossing is the first point at which a straight sub-step leaves the box.
// Lambda is the fraction of the sub-step elapsed at the crossing.
type Crossing struct {
	Wall   Wall
	Lambda float64
}

// ForceField evaluates the equation of motion for one particle. snapshot is
// the frozen ensemble the interaction terms are summed over; the particle at
// index is excluded from its own sum.
type ForceField interface {
	Evaluate(x State, snapshot Ensemble, index int) State
}

// Integrator returns the increment for a step of size h. The caller adds it
// to x. snapshot is held fixed for every internal stage.
type Integrator interface {
	Increment(f ForceField, x State, snapshot Ensemble, index int, h float64) State
}

type Boundary interface {
	DetectCrossing(old, next State) (Crossing, bool)
	Reflect(x State, wall Wall) State
	Contains(x State) bool
}

// Executor runs fn for every index in [0, n) and returns once all calls have
// finished. The returned error belongs to the lowest failing index.
type Executor interface {
	ParallelFor(n int, fn func(i int) error) error
}

// Output consumes committed ensembles in step order, starting with the
// initial state at step 0. Emit must not retain e past its return.
type Output interface {
	Emit(step int, t float64, e Ensemble) error
	Close() error
}

type Observer interface {
	OnStep(step int, t float64, e Ensemble, stats StepStats)
}

type StepStats struct {
	Bounces int
}

type Config struct {
	N       int
	BoxSize float64
	Dt      float64
	TMax    float64
	VMax    float64
}

func (c Config) Validate() error {
	switch {
	case c.N <= 0:
		return fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidConfig, c.N)
	case !(c.BoxSize > 0) || math.IsInf(c.BoxSize, 0):
		return fmt.Errorf("%w: box size must be positive, got %g", ErrInvalidConfig, c.BoxSize)
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case !(c.TMax > 0) || math.IsInf(c.TMax, 0):
		return fmt.Errorf("%w: t_max must be positive, got %g", ErrInvalidConfig, c.TMax)
	case !(c.VMax >= 0) || math.IsInf(c.VMax, 0):
		return fmt.Errorf("%w: v_max must be non-negative, got %g", ErrInvalidConfig, c.VMax)
	}
	return nil
}

// TotalSteps is ceil(TMax/Dt). Quotients within rounding error of an
// integer count as that integer, so 1.1/0.1 gives 11 steps, not 12.
func (c Config) TotalSteps() int {
	q := c.TMax / c.Dt
	if r := math.Round(q); math.Abs(q-r) <= 1e-9*math.Max(1, r) {
		return int(r)
	}
	return int(math.Ceil(q))
}

type Result struct {
	Steps   int
	Time    float64
	Bounces int
	Final   Ensemble
}
