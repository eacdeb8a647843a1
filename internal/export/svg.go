package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Point is a position in box coordinates.
type Point struct{ X, Y float64 }

func svgHeader(sb *strings.Builder, size int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="#444466"/>
`, size, size, size, size, size-1, size-1)
}

// scale maps box coordinates onto a size x size image with y pointing up.
func scale(p Point, boxSize float64, size int) (float64, float64) {
	s := float64(size) / boxSize
	return p.X * s, float64(size) - p.Y*s
}

// FrameToSVG draws the box and one dot per particle. Particles outside the
// box are drawn in red.
func FrameToSVG(e dynamo.Ensemble, boxSize float64, size int) string {
	if boxSize <= 0 || size <= 0 {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, size)

	radius := float64(size) / 200
	if radius < 1.5 {
		radius = 1.5
	}

	sb.WriteString("<g fill=\"#00ff88\">\n")
	var outside []Point
	for _, s := range e {
		p := Point{s[dynamo.PosX], s[dynamo.PosY]}
		if p.X < 0 || p.Y < 0 || p.X > boxSize || p.Y > boxSize {
			outside = append(outside, p)
			continue
		}
		cx, cy := scale(p, boxSize, size)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius)
	}
	sb.WriteString("</g>\n")

	if len(outside) > 0 {
		sb.WriteString("<g fill=\"#ff4444\">\n")
		for _, p := range outside {
			cx, cy := scale(p, boxSize, size)
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a particle path inside the box.
func TrajectoryToSVG(points []Point, boxSize float64, size int, strokeColor string) string {
	if len(points) < 2 || boxSize <= 0 || size <= 0 {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, size)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x, y := scale(p, boxSize, size)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
