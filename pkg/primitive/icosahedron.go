package primitive

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxDetail caps the icosahedron subdivision level.
const MaxDetail = 6

var icosahedronCache sync.Map // int -> *Primitive

// IcosahedronVertexCount returns the vertex count of an icosahedron
// subdivided detail times: 10*4^detail + 2.
func IcosahedronVertexCount(detail int) int {
	detail = clampDetail(detail)
	return 10*(1<<(2*detail)) + 2
}

// IcosahedronTriangleCount returns the face count: 20*4^detail.
func IcosahedronTriangleCount(detail int) int {
	detail = clampDetail(detail)
	return 20 * (1 << (2 * detail))
}

// Icosahedron returns a smooth unit sphere built by subdividing an
// icosahedron detail times. Detail 0 is the plain 20-face icosahedron;
// every level multiplies the face count by four. Results are cached.
func Icosahedron(detail int) *Primitive {
	detail = clampDetail(detail)
	if p, ok := icosahedronCache.Load(detail); ok {
		return p.(*Primitive)
	}
	p, _ := icosahedronCache.LoadOrStore(detail, newIcosahedron(detail))
	return p.(*Primitive)
}

func clampDetail(detail int) int {
	if detail < 0 {
		return 0
	}
	if detail > MaxDetail {
		return MaxDetail
	}
	return detail
}

func newIcosahedron(detail int) *Primitive {
	t := (1 + math32.Sqrt(5)) / 2

	vertices := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	faces := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for i := range vertices {
		vertices[i] = safeNormalize(vertices[i])
	}

	for level := 0; level < detail; level++ {
		midpoints := make(map[[2]uint32]uint32, len(faces)*3/2)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{a, b}
			if a > b {
				key = [2]uint32{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			m := safeNormalize(vertices[a].Add(vertices[b]).Mul(0.5))
			idx := uint32(len(vertices))
			vertices = append(vertices, m)
			midpoints[key] = idx
			return idx
		}

		next := make([][3]uint32, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]uint32{f[0], ab, ca},
				[3]uint32{f[1], bc, ab},
				[3]uint32{f[2], ca, bc},
				[3]uint32{ab, bc, ca},
			)
		}
		faces = next
	}

	normals := make([]mgl32.Vec3, len(vertices))
	copy(normals, vertices)

	return &Primitive{
		Vertices: vertices,
		Normals:  normals,
		Indices:  faces,
	}
}
