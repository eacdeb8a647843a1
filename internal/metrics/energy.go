package metrics

import (
	"math"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Potential is implemented by force fields with a pair potential.
type Potential interface {
	PotentialEnergy(e dynamo.Ensemble) float64
}

// KineticEnergy is the sum of v^2/2 over all particles, with unit mass.
func KineticEnergy(e dynamo.Ensemble) float64 {
	var ke float64
	for _, s := range e {
		vx, vy := s.Velocity()
		ke += 0.5 * (vx*vx + vy*vy)
	}
	return ke
}

func Momentum(e dynamo.Ensemble) (px, py float64) {
	for _, s := range e {
		px += s[dynamo.VelX]
		py += s[dynamo.VelY]
	}
	return px, py
}

// TotalEnergy adds the field's potential energy when it has one.
func TotalEnergy(e dynamo.Ensemble, field dynamo.ForceField) float64 {
	total := KineticEnergy(e)
	if p, ok := field.(Potential); ok {
		total += p.PotentialEnergy(e)
	}
	return total
}

// Energy is the mean total energy over the observed steps.
type Energy struct {
	name        string
	field       dynamo.ForceField
	samples     int
	totalEnergy float64
}

func NewEnergy(field dynamo.ForceField) *Energy {
	return &Energy{
		name:  "energy",
		field: field,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(_ int, _ float64, ens dynamo.Ensemble, _ dynamo.StepStats) {
	e.totalEnergy += TotalEnergy(ens, e.field)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the initial total
// energy. When the initial energy is zero the drift is absolute.
type EnergyDrift struct {
	name          string
	field         dynamo.ForceField
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	started       bool
}

func NewEnergyDrift(field dynamo.ForceField) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		field: field,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Start(initial dynamo.Ensemble) {
	e.Reset()
	e.initialEnergy = TotalEnergy(initial, e.field)
	e.currentEnergy = e.initialEnergy
	e.started = true
}

func (e *EnergyDrift) OnStep(_ int, _ float64, ens dynamo.Ensemble, _ dynamo.StepStats) {
	energy := TotalEnergy(ens, e.field)
	if !e.started {
		e.initialEnergy = energy
		e.started = true
	}
	e.currentEnergy = energy

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.started = false
}
