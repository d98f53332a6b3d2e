package primitive

import "github.com/go-gl/mathgl/mgl32"

var (
	octahedron           = newOctahedron(false)
	perforatedOctahedron = newOctahedron(true)
)

// Octahedron returns a regular octahedron with vertices at distance 0.5 on
// each axis.
func Octahedron() *Primitive { return octahedron }

// PerforatedOctahedron returns the y >= 0 half of Octahedron closed by the
// square cut face in the XZ plane. A copy rotated 180° about Z fills the
// other half.
func PerforatedOctahedron() *Primitive { return perforatedOctahedron }

func newOctahedron(perforated bool) *Primitive {
	const r = 0.5
	var b flatBuilder
	for _, sy := range []float32{1, -1} {
		if perforated && sy < 0 {
			continue
		}
		for _, sx := range []float32{1, -1} {
			for _, sz := range []float32{1, -1} {
				x := mgl32.Vec3{sx * r, 0, 0}
				y := mgl32.Vec3{0, sy * r, 0}
				z := mgl32.Vec3{0, 0, sz * r}
				if sx*sy*sz > 0 {
					b.triangle(x, y, z)
				} else {
					b.triangle(x, z, y)
				}
			}
		}
	}
	if perforated {
		b.quad(
			mgl32.Vec3{r, 0, 0},
			mgl32.Vec3{0, 0, r},
			mgl32.Vec3{-r, 0, 0},
			mgl32.Vec3{0, 0, -r},
		)
	}
	return b.primitive()
}
