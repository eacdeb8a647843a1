package boundary

import (
	"math"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Box is an axis-aligned rectangle with reflecting walls.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
}

func NewBox(xmin, xmax, ymin, ymax float64) Box {
	return Box{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}

// NewSquare returns the box [0, size] x [0, size].
func NewSquare(size float64) Box {
	return NewBox(0, size, 0, size)
}

func (b Box) Size() (w, h float64) {
	return b.XMax - b.XMin, b.YMax - b.YMin
}

// Contains reports whether the position of x lies in the closed box.
func (b Box) Contains(x dynamo.State) bool {
	px, py := x.Position()
	return px >= b.XMin && px <= b.XMax && py >= b.YMin && py <= b.YMax
}

// DetectCrossing finds the first wall the straight segment from old to next
// reaches. A wall counts only when the segment moves toward it and ends on
// or beyond it, so the fraction lies in [0, 1]: 1 for a segment ending
// exactly on the wall, 0 for one leaving from the wall itself. Equal
// fractions go to the wall declared first in dynamo.Wall order.
func (b Box) DetectCrossing(old, next dynamo.State) (dynamo.Crossing, bool) {
	x0, y0 := old.Position()
	x1, y1 := next.Position()
	dx, dy := x1-x0, y1-y0

	best := dynamo.Crossing{Lambda: math.Inf(1)}
	found := false
	consider := func(w dynamo.Wall, lambda float64) {
		if lambda >= 0 && lambda <= 1 && lambda < best.Lambda {
			best = dynamo.Crossing{Wall: w, Lambda: lambda}
			found = true
		}
	}

	if dx < 0 && x1 <= b.XMin {
		consider(dynamo.WallLeft, (b.XMin-x0)/dx)
	}
	if dx > 0 && x1 >= b.XMax {
		consider(dynamo.WallRight, (b.XMax-x0)/dx)
	}
	if dy < 0 && y1 <= b.YMin {
		consider(dynamo.WallBottom, (b.YMin-y0)/dy)
	}
	if dy > 0 && y1 >= b.YMax {
		consider(dynamo.WallTop, (b.YMax-y0)/dy)
	}

	if !found {
		return dynamo.Crossing{}, false
	}
	return best, true
}

// Reflect negates the velocity component normal to wall. Position and the
// tangential component are untouched.
func (b Box) Reflect(x dynamo.State, wall dynamo.Wall) dynamo.State {
	x[wall.Axis()] = -x[wall.Axis()]
	return x
}
