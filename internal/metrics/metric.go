package metrics

import "github.com/san-kum/boxsim/internal/dynamo"

// Metric is a step observer that folds the run into a single number.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}

// Summary collects the current value of every metric by name.
func Summary(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
