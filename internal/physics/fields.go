package physics

import (
	"math"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Free moves particles in straight lines: no interaction at all.
type Free struct{}

func (Free) Evaluate(x dynamo.State, _ dynamo.Ensemble, _ int) dynamo.State {
	return dynamo.State{x[dynamo.VelX], x[dynamo.VelY], 0, 0}
}

func (Free) PotentialEnergy(dynamo.Ensemble) float64 { return 0 }

// InverseSquare is a softened 1/r^2 pair interaction. Positive Strength
// pushes particles apart (Coulomb-like); negative Strength pulls them
// together (gravity-like). With zero Softening two coincident particles
// produce a non-finite acceleration.
type InverseSquare struct {
	Strength  float64
	Softening float64
}

func NewInverseSquare(strength, softening float64) *InverseSquare {
	return &InverseSquare{Strength: strength, Softening: softening}
}

func (f *InverseSquare) Evaluate(x dynamo.State, snapshot dynamo.Ensemble, index int) dynamo.State {
	d := dynamo.State{x[dynamo.VelX], x[dynamo.VelY], 0, 0}
	eps2 := f.Softening * f.Softening

	for j, other := range snapshot {
		if j == index {
			continue
		}

		rx := x[dynamo.PosX] - other[dynamo.PosX]
		ry := x[dynamo.PosY] - other[dynamo.PosY]
		r2 := rx*rx + ry*ry + eps2

		rInv := 1.0 / math.Sqrt(r2)
		r3Inv := rInv * rInv * rInv

		d[dynamo.VelX] += f.Strength * rx * r3Inv
		d[dynamo.VelY] += f.Strength * ry * r3Inv
	}

	return d
}

func (f *InverseSquare) PotentialEnergy(e dynamo.Ensemble) float64 {
	eps2 := f.Softening * f.Softening
	pe := 0.0
	for i := range e {
		for j := i + 1; j < len(e); j++ {
			rx := e[j][dynamo.PosX] - e[i][dynamo.PosX]
			ry := e[j][dynamo.PosY] - e[i][dynamo.PosY]
			pe += f.Strength / math.Sqrt(rx*rx+ry*ry+eps2)
		}
	}
	return pe
}

// Harmonic ties every pair of particles together with a zero-length
// linear spring.
type Harmonic struct {
	Stiffness float64
}

func NewHarmonic(stiffness float64) *Harmonic {
	return &Harmonic{Stiffness: stiffness}
}

func (f *Harmonic) Evaluate(x dynamo.State, snapshot dynamo.Ensemble, index int) dynamo.State {
	d := dynamo.State{x[dynamo.VelX], x[dynamo.VelY], 0, 0}

	for j, other := range snapshot {
		if j == index {
			continue
		}
		d[dynamo.VelX] -= f.Stiffness * (x[dynamo.PosX] - other[dynamo.PosX])
		d[dynamo.VelY] -= f.Stiffness * (x[dynamo.PosY] - other[dynamo.PosY])
	}

	return d
}

func (f *Harmonic) PotentialEnergy(e dynamo.Ensemble) float64 {
	pe := 0.0
	for i := range e {
		for j := i + 1; j < len(e); j++ {
			rx := e[j][dynamo.PosX] - e[i][dynamo.PosX]
			ry := e[j][dynamo.PosY] - e[i][dynamo.PosY]
			pe += 0.5 * f.Stiffness * (rx*rx + ry*ry)
		}
	}
	return pe
}
