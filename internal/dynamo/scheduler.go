package dynamo

import "fmt"

// Scheduler advances every particle by one step. All tasks read the same
// old ensemble and write only their own slot of the destination, so the
// result does not depend on execution order.
type Scheduler struct {
	field   ForceField
	integ   Integrator
	box     Boundary
	exec    Executor
	dt      float64
	bounced []bool
}

func NewScheduler(field ForceField, integ Integrator, box Boundary, exec Executor, dt float64) *Scheduler {
	return &Scheduler{
		field: field,
		integ: integ,
		box:   box,
		exec:  exec,
		dt:    dt,
	}
}

// UpdateOne computes the next state of particle i from the frozen old
// ensemble. A particle bounces at most once per step: the remainder after
// the reflection is not checked for a second crossing. The state reached
// at the crossing fraction is reflected where it lands, without moving it
// onto the wall.
func (s *Scheduler) UpdateOne(i int, old Ensemble) (State, bool, error) {
	x0 := old[i]
	next := x0.Add(s.integ.Increment(s.field, x0, old, i, s.dt))

	c, bounced := s.box.DetectCrossing(x0, next)
	if bounced {
		hit := x0.Add(s.integ.Increment(s.field, x0, old, i, c.Lambda*s.dt))
		hit = s.box.Reflect(hit, c.Wall)
		next = hit.Add(s.integ.Increment(s.field, hit, old, i, (1-c.Lambda)*s.dt))
	}

	if !next.IsValid() {
		return next, bounced, &SimulationError{Particle: i, State: next, Wrapped: ErrDivergence}
	}
	return next, bounced, nil
}

// Step fills next from old. next is left partially written on error and
// must not be committed.
func (s *Scheduler) Step(old, next Ensemble) (StepStats, error) {
	if len(next) != len(old) {
		return StepStats{}, fmt.Errorf("%w: destination holds %d particles, source %d", ErrEnsembleSize, len(next), len(old))
	}
	if len(s.bounced) != len(old) {
		s.bounced = make([]bool, len(old))
	}

	err := s.exec.ParallelFor(len(old), func(i int) error {
		x, bounced, err := s.UpdateOne(i, old)
		if err != nil {
			return err
		}
		next[i] = x
		s.bounced[i] = bounced
		return nil
	})
	if err != nil {
		return StepStats{}, err
	}

	stats := StepStats{}
	for _, b := range s.bounced {
		if b {
			stats.Bounces++
		}
	}
	return stats, nil
}
