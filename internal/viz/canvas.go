package viz

import (
	"math"
	"strings"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// SetPixel sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Point plots world coordinates inside a square of side size onto the
// canvas, with y pointing up. Points outside the square are dropped.
func (c *Canvas) Point(wx, wy, size float64) {
	px, py, ok := c.project(wx, wy, size)
	if ok {
		c.Set(px, py)
	}
}

// Frame outlines the whole canvas.
func (c *Canvas) Frame() {
	maxX, maxY := c.Width*2-1, c.Height*4-1
	c.DrawLine(0, 0, maxX, 0)
	c.DrawLine(maxX, 0, maxX, maxY)
	c.DrawLine(maxX, maxY, 0, maxY)
	c.DrawLine(0, maxY, 0, 0)
}

// DrawEnsemble clears the canvas and draws the box outline and one dot per
// particle.
func (c *Canvas) DrawEnsemble(e dynamo.Ensemble, size float64) {
	c.Clear()
	c.Frame()
	for _, s := range e {
		c.Point(s[dynamo.PosX], s[dynamo.PosY], size)
	}
}

func (c *Canvas) project(wx, wy, size float64) (int, int, bool) {
	if size <= 0 || wx < 0 || wy < 0 || wx > size || wy > size {
		return 0, 0, false
	}
	maxX, maxY := float64(c.Width*2-1), float64(c.Height*4-1)
	px := int(math.Round(wx / size * maxX))
	py := int(math.Round((1 - wy/size) * maxY))
	return px, py, true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
