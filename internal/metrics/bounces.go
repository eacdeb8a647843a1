package metrics

import "github.com/san-kum/boxsim/internal/dynamo"

// BounceRate is the mean number of wall reflections per step.
type BounceRate struct {
	name    string
	sum     int
	samples int
}

func NewBounceRate() *BounceRate {
	return &BounceRate{
		name: "bounce_rate",
	}
}

func (b *BounceRate) Name() string {
	return b.name
}

func (b *BounceRate) OnStep(_ int, _ float64, _ dynamo.Ensemble, stats dynamo.StepStats) {
	b.sum += stats.Bounces
	b.samples++
}

func (b *BounceRate) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.sum) / float64(b.samples)
}

func (b *BounceRate) Reset() {
	b.sum = 0
	b.samples = 0
}
