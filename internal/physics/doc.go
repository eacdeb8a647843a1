// Package physics provides the interaction laws a particle ensemble can
// evolve under.
//
// Each law implements [dynamo.ForceField]. The acceleration of particle i
// is summed over every other particle in the frozen snapshot; the i-th
// entry is always skipped:
//
//   - [Free]: no interaction, straight-line motion between bounces
//   - [InverseSquare]: softened 1/r^2 repulsion or attraction
//   - [Harmonic]: zero-length springs between every pair
//
// All laws also report the pair potential energy of an ensemble, which
// the metrics package uses to track total energy drift:
//
//	f := physics.NewInverseSquare(1.0, 0.05)
//	pe := f.PotentialEnergy(ensemble)
package physics
