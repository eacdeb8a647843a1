// Package dynamo provides the core of the particle-in-a-box engine.
//
// The package defines the data model and the contracts between components:
//
//   - [State]: one particle (x, y, vx, vy)
//   - [Ensemble]: every particle at one instant, indexed by identity
//   - [ForceField]: equation of motion over a frozen ensemble snapshot
//   - [Integrator]: increment for a step of arbitrary size
//   - [Boundary]: crossing detection and reflection
//   - [Scheduler]: one parallel step over all particles
//   - [Simulator]: double-buffered driver that commits steps to an [Output]
//
// # Example
//
//	box := boundary.NewSquare(10)
//	pool := compute.NewPool(0)
//	defer pool.Close()
//	s, err := dynamo.New(cfg, physics.Free{}, integrators.NewRK4(), box, pool)
//	result, err := s.Run(ctx, initial, out)
//
// # Frozen field
//
// Every derivative evaluated during a step, including the RK4 stages and
// both halves of a bounce, sees the ensemble as it was when the step began.
// Per-particle updates are therefore independent and may run in any order
// or concurrently with bit-identical results.
//
// # Thread Safety
//
// A Simulator runs one simulation at a time. The Scheduler is safe to call
// from the worker goroutines of an [Executor] because each task writes a
// distinct slot of the destination ensemble.
package dynamo
