package primitive

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Polygon returns sideCount points on a circle of the given radius in the XY
// plane, counter-clockwise. With shift the first point is rotated by half a
// step so that an edge, not a vertex, faces the +X axis.
func Polygon(sideCount int, shift bool, radius float32) []mgl32.Vec2 {
	points := make([]mgl32.Vec2, sideCount)
	step := 2 * math32.Pi / float32(sideCount)
	offset := float32(0)
	if shift {
		offset = step / 2
	}
	for i := range points {
		a := offset + float32(i)*step
		points[i] = mgl32.Vec2{math32.Cos(a) * radius, math32.Sin(a) * radius}
	}
	return points
}

// Prism extrudes a counter-clockwise outline along Z from -0.5 to 0.5.
func Prism(outline []mgl32.Vec2) *Primitive {
	return extrude(outline, 1)
}

// extrude builds a closed flat-shaded solid from an outline in XY with caps
// at z = ±height/2.
func extrude(outline []mgl32.Vec2, height float32) *Primitive {
	n := len(outline)
	h := height / 2
	top := make([]mgl32.Vec3, n)
	bottom := make([]mgl32.Vec3, n)
	var centroid mgl32.Vec2
	for i, p := range outline {
		top[i] = mgl32.Vec3{p[0], p[1], h}
		bottom[i] = mgl32.Vec3{p[0], p[1], -h}
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float32(n))

	var b flatBuilder
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.quad(bottom[i], bottom[j], top[j], top[i])
	}

	reversed := make([]mgl32.Vec3, n)
	for i := range bottom {
		reversed[i] = bottom[n-1-i]
	}
	switch n {
	case 3:
		b.triangle(top[0], top[1], top[2])
		b.triangle(reversed[0], reversed[1], reversed[2])
	case 4:
		b.quad(top[0], top[1], top[2], top[3])
		b.quad(reversed[0], reversed[1], reversed[2], reversed[3])
	default:
		b.fan(mgl32.Vec3{centroid[0], centroid[1], h}, top)
		b.fan(mgl32.Vec3{centroid[0], centroid[1], -h}, reversed)
	}
	return b.primitive()
}

var (
	box            = Prism([]mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}})
	perforatedBox  = Prism([]mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}})
	diamondPrism   = Prism(Polygon(4, false, 0.5))
	pentagonPrism  = Prism(Polygon(5, true, 0.5))
	hexagonalPrism = Prism(Polygon(6, true, 0.5))
)

// Box returns the unit cube centered at the origin: 24 vertices, 12 triangles.
func Box() *Primitive { return box }

// PerforatedBox returns the half of the unit cube on the +X side of the
// diagonal plane x = y, closed by the diagonal cut face. A copy rotated 180°
// about Z fills the other half.
func PerforatedBox() *Primitive { return perforatedBox }

// DiamondPrism returns a square prism standing on one of its corners.
func DiamondPrism() *Primitive { return diamondPrism }

// PentagonalPrism returns a regular pentagonal prism.
func PentagonalPrism() *Primitive { return pentagonPrism }

// HexagonalPrism returns a regular hexagonal prism.
func HexagonalPrism() *Primitive { return hexagonalPrism }
