package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/boxsim/internal/dynamo"
)

const metricsNamespace = "boxsim"

// Recorder exports run progress as Prometheus collectors. Collectors are
// registered on the registry passed to NewRecorder, so several recorders
// can coexist in tests.
type Recorder struct {
	StepsTotal          prometheus.Counter
	WallBouncesTotal    prometheus.Counter
	StepDurationSeconds prometheus.Histogram
	KineticEnergy       prometheus.Gauge
	Particles           prometheus.Gauge

	last time.Time
	now  func() time.Time
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Committed simulation steps",
		}),
		WallBouncesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wall_bounces_total",
			Help:      "Wall reflections across all particles",
		}),
		StepDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Wall-clock time between committed steps",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
		KineticEnergy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "kinetic_energy",
			Help:      "Kinetic energy of the last committed ensemble",
		}),
		Particles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "particles",
			Help:      "Particles in the running simulation",
		}),
		now: time.Now,
	}
}

func (r *Recorder) Start(initial dynamo.Ensemble) {
	r.Particles.Set(float64(len(initial)))
	r.KineticEnergy.Set(KineticEnergy(initial))
	r.last = r.now()
}

func (r *Recorder) OnStep(_ int, _ float64, e dynamo.Ensemble, stats dynamo.StepStats) {
	now := r.now()
	if !r.last.IsZero() {
		r.StepDurationSeconds.Observe(now.Sub(r.last).Seconds())
	}
	r.last = now

	r.StepsTotal.Inc()
	r.WallBouncesTotal.Add(float64(stats.Bounces))
	r.KineticEnergy.Set(KineticEnergy(e))
	r.Particles.Set(float64(len(e)))
}
