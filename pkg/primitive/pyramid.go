package primitive

import "github.com/go-gl/mathgl/mgl32"

var (
	octagonalPyramid           = newPyramid(Polygon(8, false, 0.5))
	perforatedOctagonalPyramid = newPerforatedPyramid(Polygon(8, false, 0.5))
)

// OctagonalPyramid returns a pyramid over a regular octagon with its base at
// z = -0.5 and apex at z = 0.5.
func OctagonalPyramid() *Primitive { return octagonalPyramid }

// PerforatedOctagonalPyramid returns the y >= 0 half of OctagonalPyramid,
// closed by the vertical cut face. A copy rotated 180° about Z fills the
// other half.
func PerforatedOctagonalPyramid() *Primitive { return perforatedOctagonalPyramid }

func newPyramid(outline []mgl32.Vec2) *Primitive {
	n := len(outline)
	apex := mgl32.Vec3{0, 0, 0.5}
	base := make([]mgl32.Vec3, n)
	for i, p := range outline {
		base[i] = mgl32.Vec3{p[0], p[1], -0.5}
	}

	var b flatBuilder
	for i := 0; i < n; i++ {
		b.triangle(base[i], base[(i+1)%n], apex)
	}
	center := mgl32.Vec3{0, 0, -0.5}
	for i := 0; i < n; i++ {
		b.triangle(center, base[(i+1)%n], base[i])
	}
	return b.primitive()
}

// newPerforatedPyramid keeps the first half of an even outline whose first
// and middle points lie on the X axis.
func newPerforatedPyramid(outline []mgl32.Vec2) *Primitive {
	half := len(outline) / 2
	apex := mgl32.Vec3{0, 0, 0.5}
	base := make([]mgl32.Vec3, half+1)
	for i := 0; i <= half; i++ {
		p := outline[i]
		base[i] = mgl32.Vec3{p[0], p[1], -0.5}
	}

	var b flatBuilder
	for i := 0; i < half; i++ {
		b.triangle(base[i], base[i+1], apex)
	}
	center := mgl32.Vec3{0, 0, -0.5}
	for i := 0; i < half; i++ {
		b.triangle(center, base[i+1], base[i])
	}
	b.triangle(base[half], base[0], apex)
	return b.primitive()
}
