package boundary_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boxsim/internal/boundary"
	"github.com/san-kum/boxsim/internal/dynamo"
)

var _ = Describe("Box", func() {
	var box boundary.Box

	BeforeEach(func() {
		box = boundary.NewSquare(10)
	})

	Describe("DetectCrossing", func() {
		It("reports nothing for a segment that stays inside", func() {
			_, ok := box.DetectCrossing(dynamo.State{1, 1, 0, 0}, dynamo.State{9, 9, 0, 0})
			Expect(ok).To(BeFalse())
		})

		It("reports a full-step fraction for a segment ending exactly on a wall", func() {
			c, ok := box.DetectCrossing(dynamo.State{5, 5, 0, 0}, dynamo.State{10, 5, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallRight))
			Expect(c.Lambda).To(Equal(1.0))

			c, ok = box.DetectCrossing(dynamo.State{5, 2, 0, 0}, dynamo.State{5, 0, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallBottom))
			Expect(c.Lambda).To(Equal(1.0))
		})

		It("reports nothing for a segment leaving a wall inward", func() {
			_, ok := box.DetectCrossing(dynamo.State{10, 5, 0, 0}, dynamo.State{9, 5, 0, 0})
			Expect(ok).To(BeFalse())
		})

		DescribeTable("finds the wall and fraction",
			func(oldX, oldY, newX, newY float64, wall dynamo.Wall, lambda float64) {
				c, ok := box.DetectCrossing(dynamo.State{oldX, oldY, 0, 0}, dynamo.State{newX, newY, 0, 0})
				Expect(ok).To(BeTrue())
				Expect(c.Wall).To(Equal(wall))
				Expect(c.Lambda).To(BeNumerically("~", lambda, 1e-12))
			},
			Entry("left", 2.0, 5.0, -2.0, 5.0, dynamo.WallLeft, 0.5),
			Entry("right", 8.0, 5.0, 12.0, 5.0, dynamo.WallRight, 0.5),
			Entry("bottom", 5.0, 1.0, 5.0, -3.0, dynamo.WallBottom, 0.25),
			Entry("top", 5.0, 9.0, 5.0, 13.0, dynamo.WallTop, 0.25),
			Entry("right wall hit first on a diagonal", 9.0, 8.0, 11.0, 11.0, dynamo.WallRight, 0.5),
			Entry("top wall hit first on a diagonal", 8.0, 9.0, 11.0, 11.0, dynamo.WallTop, 0.5),
		)

		It("matches the single-particle wall bounce fraction", func() {
			c, ok := box.DetectCrossing(dynamo.State{9.9, 5, 5, 0}, dynamo.State{14.9, 5, 5, 0})
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallRight))
			Expect(c.Lambda).To(BeNumerically("~", 0.02, 1e-12))
		})

		It("reports a zero fraction for a particle leaving from the wall itself", func() {
			c, ok := box.DetectCrossing(dynamo.State{10, 5, 1, 0}, dynamo.State{10.5, 5, 1, 0})
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallRight))
			Expect(c.Lambda).To(Equal(0.0))
		})

		It("ignores particles already outside", func() {
			_, ok := box.DetectCrossing(dynamo.State{11, 5, 1, 0}, dynamo.State{12, 5, 1, 0})
			Expect(ok).To(BeFalse())
		})

		It("only reports walls the segment moves toward", func() {
			c, ok := box.DetectCrossing(dynamo.State{5, 0.5, 0, 0}, dynamo.State{5, -0.5, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(c.Wall).To(Equal(dynamo.WallBottom))
		})

		Context("when two walls are reached at the same fraction", func() {
			It("prefers the x walls over the y walls", func() {
				c, ok := box.DetectCrossing(dynamo.State{9.5, 9.5, 0, 0}, dynamo.State{10.5, 10.5, 0, 0})
				Expect(ok).To(BeTrue())
				Expect(c.Wall).To(Equal(dynamo.WallRight))
				Expect(c.Lambda).To(Equal(0.5))

				c, ok = box.DetectCrossing(dynamo.State{0.5, 0.5, 0, 0}, dynamo.State{-0.5, -0.5, 0, 0})
				Expect(ok).To(BeTrue())
				Expect(c.Wall).To(Equal(dynamo.WallLeft))
			})

			It("gives the same answer on every call", func() {
				old := dynamo.State{9.9, 9.9, 5, 5}
				next := dynamo.State{14.9, 14.9, 5, 5}
				first, _ := box.DetectCrossing(old, next)
				for i := 0; i < 100; i++ {
					c, _ := box.DetectCrossing(old, next)
					Expect(c).To(Equal(first))
				}
			})
		})
	})

	Describe("Reflect", func() {
		It("negates vx exactly on vertical walls", func() {
			x := dynamo.State{10, 3, 0.1 + 0.2, -math.Pi}
			for _, w := range []dynamo.Wall{dynamo.WallLeft, dynamo.WallRight} {
				r := box.Reflect(x, w)
				Expect(r[dynamo.VelX]).To(Equal(-x[dynamo.VelX]))
				Expect(math.Float64bits(r[dynamo.VelY])).To(Equal(math.Float64bits(x[dynamo.VelY])))
				Expect(r[dynamo.PosX]).To(Equal(x[dynamo.PosX]))
				Expect(r[dynamo.PosY]).To(Equal(x[dynamo.PosY]))
			}
		})

		It("negates vy exactly on horizontal walls", func() {
			x := dynamo.State{3, 0, 1.0 / 3.0, 2.5e-7}
			for _, w := range []dynamo.Wall{dynamo.WallBottom, dynamo.WallTop} {
				r := box.Reflect(x, w)
				Expect(r[dynamo.VelY]).To(Equal(-x[dynamo.VelY]))
				Expect(math.Float64bits(r[dynamo.VelX])).To(Equal(math.Float64bits(x[dynamo.VelX])))
				Expect(r[dynamo.PosX]).To(Equal(x[dynamo.PosX]))
				Expect(r[dynamo.PosY]).To(Equal(x[dynamo.PosY]))
			}
		})

		It("is its own inverse", func() {
			x := dynamo.State{1, 2, 3, 4}
			Expect(box.Reflect(box.Reflect(x, dynamo.WallTop), dynamo.WallTop)).To(Equal(x))
		})
	})

	Describe("Contains", func() {
		It("includes the walls", func() {
			Expect(box.Contains(dynamo.State{0, 10, 0, 0})).To(BeTrue())
			Expect(box.Contains(dynamo.State{10, 0, 0, 0})).To(BeTrue())
			Expect(box.Contains(dynamo.State{10.0001, 5, 0, 0})).To(BeFalse())
			Expect(box.Contains(dynamo.State{5, -1e-12, 0, 0})).To(BeFalse())
		})
	})
})
