package metrics

import "github.com/san-kum/boxsim/internal/dynamo"

// Containment is the fraction of observed steps in which every particle
// was inside the box. A particle can only escape through a second crossing
// within one step, which the scheduler does not resolve.
type Containment struct {
	name       string
	box        dynamo.Boundary
	violations int
	escapes    int
	samples    int
}

func NewContainment(box dynamo.Boundary) *Containment {
	return &Containment{
		name: "containment",
		box:  box,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) OnStep(_ int, _ float64, e dynamo.Ensemble, _ dynamo.StepStats) {
	c.samples++
	outside := 0
	for _, s := range e {
		if !c.box.Contains(s) {
			outside++
		}
	}
	if outside > 0 {
		c.violations++
		c.escapes += outside
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

// Escapes is the number of particle-steps spent outside the box.
func (c *Containment) Escapes() int { return c.escapes }

func (c *Containment) Reset() {
	c.violations = 0
	c.escapes = 0
	c.samples = 0
}
