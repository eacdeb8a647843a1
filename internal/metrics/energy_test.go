package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/boxsim/internal/boundary"
	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/physics"
)

func TestKineticEnergy(t *testing.T) {
	e := dynamo.Ensemble{{0, 0, 3, 4}, {1, 1, -1, 0}}
	if ke := KineticEnergy(e); math.Abs(ke-13) > 1e-12 {
		t.Errorf("expected kinetic energy 13, got %f", ke)
	}
	if KineticEnergy(nil) != 0 {
		t.Error("expected zero energy for an empty ensemble")
	}
}

func TestMomentum(t *testing.T) {
	px, py := Momentum(dynamo.Ensemble{{0, 0, 3, 4}, {1, 1, -1, 0.5}})
	if px != 2 || py != 4.5 {
		t.Errorf("expected momentum (2, 4.5), got (%f, %f)", px, py)
	}
}

func TestTotalEnergy(t *testing.T) {
	e := dynamo.Ensemble{{0, 0, 1, 0}, {3, 4, 0, 0}}

	if got := TotalEnergy(e, physics.Free{}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("free: expected 0.5, got %f", got)
	}
	// K/r = 1/5
	if got := TotalEnergy(e, physics.NewInverseSquare(1, 0)); math.Abs(got-0.7) > 1e-12 {
		t.Errorf("inverse square: expected 0.7, got %f", got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(physics.Free{})
	m.OnStep(1, 0.1, dynamo.Ensemble{{0, 0, 1, 1}}, dynamo.StepStats{})
	m.OnStep(2, 0.2, dynamo.Ensemble{{0, 0, 1, 0}}, dynamo.StepStats{})

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected mean energy 0.75, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	d := NewEnergyDrift(physics.Free{})
	d.Start(dynamo.Ensemble{{0, 0, 2, 0}})

	d.OnStep(1, 0.1, dynamo.Ensemble{{0, 0, 2, 0}}, dynamo.StepStats{})
	if d.Value() != 0 {
		t.Errorf("expected no drift, got %f", d.Value())
	}

	d.OnStep(2, 0.2, dynamo.Ensemble{{0, 0, 2.2, 0}}, dynamo.StepStats{})
	d.OnStep(3, 0.3, dynamo.Ensemble{{0, 0, 2, 0}}, dynamo.StepStats{})
	// (2.42 - 2) / 2
	if math.Abs(d.Value()-0.21) > 1e-12 {
		t.Errorf("expected max drift 0.21, got %f", d.Value())
	}
	if d.Current() != 2 {
		t.Errorf("expected current energy 2, got %f", d.Current())
	}
}

func TestEnergyDriftWithoutStart(t *testing.T) {
	d := NewEnergyDrift(physics.Free{})
	d.OnStep(1, 0.1, dynamo.Ensemble{{0, 0, 0, 0}}, dynamo.StepStats{})
	d.OnStep(2, 0.2, dynamo.Ensemble{{0, 0, 1, 0}}, dynamo.StepStats{})
	if d.Value() != 0.5 {
		t.Errorf("expected absolute drift 0.5 from a zero baseline, got %f", d.Value())
	}
}

func TestContainment(t *testing.T) {
	c := NewContainment(boundary.NewSquare(10))
	if c.Value() != 1 {
		t.Error("expected full containment before any step")
	}

	c.OnStep(1, 0.1, dynamo.Ensemble{{1, 1, 0, 0}, {10, 10, 0, 0}}, dynamo.StepStats{})
	c.OnStep(2, 0.2, dynamo.Ensemble{{1, 1, 0, 0}, {10, 14.9, 0, 0}}, dynamo.StepStats{})

	if c.Value() != 0.5 {
		t.Errorf("expected containment 0.5, got %f", c.Value())
	}
	if c.Escapes() != 1 {
		t.Errorf("expected 1 escape, got %d", c.Escapes())
	}
}

func TestBounceRateAndSummary(t *testing.T) {
	b := NewBounceRate()
	b.OnStep(1, 0.1, nil, dynamo.StepStats{Bounces: 3})
	b.OnStep(2, 0.2, nil, dynamo.StepStats{Bounces: 0})

	s := Summary(b, NewContainment(boundary.NewSquare(1)))
	if s["bounce_rate"] != 1.5 {
		t.Errorf("expected bounce rate 1.5, got %f", s["bounce_rate"])
	}
	if s["containment"] != 1 {
		t.Errorf("expected containment 1, got %f", s["containment"])
	}
}
