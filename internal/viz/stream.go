package viz

import (
	"sync"

	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/metrics"
)

// FrameMsg carries one committed step to the live view.
type FrameMsg struct {
	Step     int
	Time     float64
	Ensemble dynamo.Ensemble
	Kinetic  float64
}

// Stream is an Output that hands frames to a live view. Emit blocks until
// the view takes the frame, so a paused view pauses the simulation. Once
// the view detaches, frames are dropped.
type Stream struct {
	frames    chan FrameMsg
	detached  chan struct{}
	closeOnce sync.Once
	detachOne sync.Once
}

func NewStream(buffer int) *Stream {
	return &Stream{
		frames:   make(chan FrameMsg, buffer),
		detached: make(chan struct{}),
	}
}

func (s *Stream) Emit(step int, t float64, e dynamo.Ensemble) error {
	msg := FrameMsg{
		Step:     step,
		Time:     t,
		Ensemble: e.Clone(),
		Kinetic:  metrics.KineticEnergy(e),
	}
	select {
	case s.frames <- msg:
	case <-s.detached:
	}
	return nil
}

// Close ends the stream. The view sees it as the end of the run.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.frames) })
	return nil
}

// Detach tells the producer that nobody is reading any more.
func (s *Stream) Detach() {
	s.detachOne.Do(func() { close(s.detached) })
}

// Frames is the receive side used by the view.
func (s *Stream) Frames() <-chan FrameMsg { return s.frames }
