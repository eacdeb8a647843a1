package dynamo_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boxsim/internal/boundary"
	"github.com/san-kum/boxsim/internal/compute"
	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/integrators"
	"github.com/san-kum/boxsim/internal/physics"
)

// reverseExecutor runs the highest index first.
type reverseExecutor struct{}

func (reverseExecutor) ParallelFor(n int, fn func(i int) error) error {
	for i := n - 1; i >= 0; i-- {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

// panickyField fails on one particle.
type panickyField struct{ bad int }

func (p panickyField) Evaluate(x dynamo.State, s dynamo.Ensemble, i int) dynamo.State {
	if i == p.bad {
		panic("boom")
	}
	return physics.Free{}.Evaluate(x, s, i)
}

func randomEnsemble(rng *rand.Rand, n int, size, vmax float64) dynamo.Ensemble {
	e := make(dynamo.Ensemble, n)
	for i := range e {
		e[i] = dynamo.State{
			rng.Float64() * size,
			rng.Float64() * size,
			(2*rng.Float64() - 1) * vmax,
			(2*rng.Float64() - 1) * vmax,
		}
	}
	return e
}

var _ = Describe("Scheduler", func() {
	var (
		box   boundary.Box
		integ *integrators.RK4
	)

	BeforeEach(func() {
		box = boundary.NewSquare(10)
		integ = integrators.NewRK4()
	})

	Describe("UpdateOne", func() {
		It("bounces a single particle off the right wall", func() {
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 1.0)
			old := dynamo.Ensemble{{9.9, 5.0, 5.0, 0.0}}

			next, bounced, err := sched.UpdateOne(0, old)

			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())
			Expect(next[dynamo.VelX]).To(Equal(-5.0))
			Expect(next[dynamo.VelY]).To(Equal(0.0))
			// 0.1 to the wall, then 4.9 back: 9.9 + 0.1 - 4.9
			Expect(next[dynamo.PosX]).To(BeNumerically("~", 5.1, 1e-12))
			Expect(next[dynamo.PosY]).To(Equal(5.0))
			Expect(box.Contains(next)).To(BeTrue())
		})

		It("takes the plain RK4 path when the particle stays inside", func() {
			field := physics.NewInverseSquare(0.5, 0.1)
			sched := dynamo.NewScheduler(field, integ, box, compute.Serial{}, 0.01)
			old := dynamo.Ensemble{{2, 2, 1, 0.5}, {7, 3, -0.5, 0}, {5, 8, 0, -1}}

			for i := range old {
				next, bounced, err := sched.UpdateOne(i, old)
				Expect(err).NotTo(HaveOccurred())
				Expect(bounced).To(BeFalse())
				Expect(next).To(Equal(old[i].Add(integ.Increment(field, old[i], old, i, 0.01))))
			}
		})

		It("resolves an exact corner hit with the x wall", func() {
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 1.0)
			old := dynamo.Ensemble{{9.9, 9.9, 5.0, 5.0}}

			next, bounced, err := sched.UpdateOne(0, old)

			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())
			Expect(next[dynamo.VelX]).To(Equal(-5.0))
			Expect(next[dynamo.VelY]).To(Equal(5.0))
			// Only one wall is handled per step, so y keeps going.
			Expect(next[dynamo.PosY]).To(BeNumerically(">", 10.0))
		})

		It("does not look for a second crossing after a bounce", func() {
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 1.0)
			old := dynamo.Ensemble{{5, 5, 30, 0}}

			next, bounced, err := sched.UpdateOne(0, old)

			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())
			Expect(next[dynamo.VelX]).To(Equal(-30.0))
			Expect(next[dynamo.PosX]).To(BeNumerically("~", -15.0, 1e-12))
			Expect(box.Contains(next)).To(BeFalse())
		})

		It("evaluates both halves of a bounce against the old ensemble", func() {
			field := physics.NewHarmonic(0.2)
			sched := dynamo.NewScheduler(field, integ, box, compute.Serial{}, 0.5)
			old := dynamo.Ensemble{{9.5, 5, 4, 0}, {1, 5, 0, 0}}

			next, bounced, err := sched.UpdateOne(0, old)
			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())

			cand := old[0].Add(integ.Increment(field, old[0], old, 0, 0.5))
			c, ok := box.DetectCrossing(old[0], cand)
			Expect(ok).To(BeTrue())

			hit := old[0].Add(integ.Increment(field, old[0], old, 0, c.Lambda*0.5))
			hit = box.Reflect(hit, c.Wall)
			want := hit.Add(integ.Increment(field, hit, old, 0, (1-c.Lambda)*0.5))
			Expect(next).To(Equal(want))
		})

		It("reflects where the partial step lands under a force", func() {
			field := physics.NewHarmonic(1)
			sched := dynamo.NewScheduler(field, integ, box, compute.Serial{}, 0.5)
			old := dynamo.Ensemble{{9.5, 5, 6, 0}, {1, 5, 0, 0}}

			next, bounced, err := sched.UpdateOne(0, old)
			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())

			cand := old[0].Add(integ.Increment(field, old[0], old, 0, 0.5))
			c, ok := box.DetectCrossing(old[0], cand)
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallRight))

			// The partial step overshoots the straight-line crossing point.
			hit := old[0].Add(integ.Increment(field, old[0], old, 0, c.Lambda*0.5))
			Expect(hit[dynamo.PosX]).To(BeNumerically(">", 10.0))

			Expect(next[dynamo.PosX]).To(BeNumerically("~", 7.92827, 1e-4))
			Expect(next[dynamo.VelX]).To(BeNumerically("~", -7.76181, 1e-4))
			Expect(next[dynamo.PosY]).To(Equal(5.0))
			Expect(next[dynamo.VelY]).To(Equal(0.0))
		})

		It("bounces a segment that ends exactly on a wall", func() {
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 1.0)
			old := dynamo.Ensemble{{9, 5, 1, 0}}

			next, bounced, err := sched.UpdateOne(0, old)

			Expect(err).NotTo(HaveOccurred())
			Expect(bounced).To(BeTrue())
			Expect(next).To(Equal(dynamo.State{10, 5, -1, 0}))
			Expect(box.Contains(next)).To(BeTrue())
		})

		It("reports a diverging particle", func() {
			sched := dynamo.NewScheduler(physics.NewInverseSquare(1, 0), integ, box, compute.Serial{}, 0.1)
			old := dynamo.Ensemble{{3, 3, 0, 0}, {3, 3, 0, 0}}

			_, _, err := sched.UpdateOne(1, old)

			Expect(errors.Is(err, dynamo.ErrDivergence)).To(BeTrue())
			var se *dynamo.SimulationError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Particle).To(Equal(1))
		})
	})

	Describe("Step", func() {
		It("gives identical ensembles for every execution order", func() {
			rng := rand.New(rand.NewSource(7))
			old := randomEnsemble(rng, 97, 10, 3)
			field := physics.NewInverseSquare(0.05, 0.2)

			pool4 := compute.NewPool(4)
			defer pool4.Close()
			pool3 := compute.NewPool(3)
			defer pool3.Close()

			var reference dynamo.Ensemble
			for _, exec := range []dynamo.Executor{compute.Serial{}, reverseExecutor{}, pool4, pool3} {
				sched := dynamo.NewScheduler(field, integ, box, exec, 0.5)
				next := make(dynamo.Ensemble, len(old))
				_, err := sched.Step(old, next)
				Expect(err).NotTo(HaveOccurred())

				if reference == nil {
					reference = next
					continue
				}
				for i := range next {
					for k := range next[i] {
						Expect(math.Float64bits(next[i][k])).To(Equal(math.Float64bits(reference[i][k])),
							"particle %d component %d", i, k)
					}
				}
			}
		})

		It("leaves the old ensemble untouched", func() {
			rng := rand.New(rand.NewSource(11))
			old := randomEnsemble(rng, 32, 10, 2)
			before := old.Clone()

			sched := dynamo.NewScheduler(physics.NewHarmonic(0.01), integ, box, compute.Serial{}, 0.25)
			_, err := sched.Step(old, make(dynamo.Ensemble, len(old)))

			Expect(err).NotTo(HaveOccurred())
			Expect(old).To(Equal(before))
		})

		It("counts bounces", func() {
			old := dynamo.Ensemble{{9.9, 5, 5, 0}, {5, 5, 0, 0}, {0.1, 0.5, -1, 0}}
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 1.0)

			stats, err := sched.Step(old, make(dynamo.Ensemble, 3))

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Bounces).To(Equal(2))
		})

		It("fails the whole step when one task panics", func() {
			pool := compute.NewPool(2)
			defer pool.Close()

			old := dynamo.Ensemble{{1, 1, 0, 0}, {2, 2, 0, 0}, {3, 3, 0, 0}, {4, 4, 0, 0}}
			sched := dynamo.NewScheduler(panickyField{bad: 2}, integ, box, pool, 0.1)

			_, err := sched.Step(old, make(dynamo.Ensemble, 4))
			Expect(errors.Is(err, compute.ErrTaskPanic)).To(BeTrue())
		})

		It("reports the lowest diverging particle", func() {
			pool := compute.NewPool(4)
			defer pool.Close()

			old := dynamo.Ensemble{{1, 1, 0, 0}, {3, 3, 0, 0}, {3, 3, 0, 0}, {8, 8, 0, 0}}
			sched := dynamo.NewScheduler(physics.NewInverseSquare(1, 0), integ, box, pool, 0.1)

			_, err := sched.Step(old, make(dynamo.Ensemble, 4))

			var se *dynamo.SimulationError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Particle).To(Equal(1))
		})

		It("rejects a destination of the wrong size", func() {
			sched := dynamo.NewScheduler(physics.Free{}, integ, box, compute.Serial{}, 0.1)
			_, err := sched.Step(dynamo.Ensemble{{1, 1, 0, 0}}, make(dynamo.Ensemble, 2))
			Expect(errors.Is(err, dynamo.ErrEnsembleSize)).To(BeTrue())
		})
	})
})
