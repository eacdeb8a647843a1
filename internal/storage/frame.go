package storage

import (
	"fmt"
	"sort"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Frame is one committed step read back from a recording.
type Frame struct {
	Step     int             `json:"step"`
	Time     float64         `json:"time"`
	Ensemble dynamo.Ensemble `json:"ensemble"`
}

// row is a single particle line as every recorder stores it.
type row struct {
	step     int
	time     float64
	particle int
	state    dynamo.State
}

// groupRows assembles rows into frames ordered by step.
func groupRows(rows []row) ([]Frame, error) {
	byStep := make(map[int]*Frame)
	for _, r := range rows {
		f, ok := byStep[r.step]
		if !ok {
			f = &Frame{Step: r.step, Time: r.time}
			byStep[r.step] = f
		}
		if r.particle < 0 {
			return nil, fmt.Errorf("step %d: negative particle index %d", r.step, r.particle)
		}
		for len(f.Ensemble) <= r.particle {
			f.Ensemble = append(f.Ensemble, dynamo.State{})
		}
		f.Ensemble[r.particle] = r.state
	}

	frames := make([]Frame, 0, len(byStep))
	for _, f := range byStep {
		frames = append(frames, *f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Step < frames[j].Step })
	return frames, nil
}
