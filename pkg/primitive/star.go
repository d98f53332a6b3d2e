package primitive

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// StarProps configures Star.
type StarProps struct {
	OuterRadius float32
	InnerRadius float32
	Thickness   float32
	PointCount  int
}

// DefaultStarProps is the five-pointed star used for pentose symbols.
var DefaultStarProps = StarProps{
	OuterRadius: 1,
	InnerRadius: 0.5,
	Thickness:   0.5,
	PointCount:  5,
}

// Star returns a flat star prism in the XY plane, extruded along Z by
// Thickness. A point count below 3 falls back to DefaultStarProps.PointCount.
func Star(props StarProps) *Primitive {
	if props.PointCount < 3 {
		props.PointCount = DefaultStarProps.PointCount
	}
	n := props.PointCount * 2
	outline := make([]mgl32.Vec2, n)
	step := math32.Pi / float32(props.PointCount)
	for i := range outline {
		r := props.OuterRadius
		if i%2 == 1 {
			r = props.InnerRadius
		}
		a := math32.Pi/2 + float32(i)*step
		outline[i] = mgl32.Vec2{math32.Cos(a) * r, math32.Sin(a) * r}
	}
	return extrude(outline, props.Thickness)
}
