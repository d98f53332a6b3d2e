package primitive

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allShapes lists every exported shape by name.
func allShapes() map[string]*Primitive {
	return map[string]*Primitive{
		"icosahedron-0":                Icosahedron(0),
		"icosahedron-2":                Icosahedron(2),
		"box":                          Box(),
		"perforated-box":               PerforatedBox(),
		"octagonal-pyramid":            OctagonalPyramid(),
		"perforated-octagonal-pyramid": PerforatedOctagonalPyramid(),
		"octahedron":                   Octahedron(),
		"perforated-octahedron":        PerforatedOctahedron(),
		"diamond-prism":                DiamondPrism(),
		"pentagonal-prism":             PentagonalPrism(),
		"hexagonal-prism":              HexagonalPrism(),
		"star":                         Star(DefaultStarProps),
		"cylinder":                     Cylinder(CylinderProps{RadialSegments: 8, TopCap: true, BottomCap: true}),
	}
}

func TestShapesAreWellFormed(t *testing.T) {
	for name, p := range allShapes() {
		t.Run(name, func(t *testing.T) {
			require.NotZero(t, p.VertexCount())
			require.NotZero(t, p.TriangleCount())
			require.Len(t, p.Normals, p.VertexCount())
			for _, tri := range p.Indices {
				for _, idx := range tri {
					assert.Less(t, int(idx), p.VertexCount())
				}
			}
			for _, n := range p.Normals {
				assert.InDelta(t, 1, n.Len(), 1e-4)
			}
		})
	}
}

func TestIcosahedronCounts(t *testing.T) {
	for detail := 0; detail <= 3; detail++ {
		p := Icosahedron(detail)
		assert.Equal(t, IcosahedronVertexCount(detail), p.VertexCount(), "detail %d", detail)
		assert.Equal(t, IcosahedronTriangleCount(detail), p.TriangleCount(), "detail %d", detail)
	}
	assert.Equal(t, 12, IcosahedronVertexCount(0))
	assert.Equal(t, 20, IcosahedronTriangleCount(0))
	assert.Equal(t, 42, IcosahedronVertexCount(1))
}

func TestIcosahedronIsUnitSphere(t *testing.T) {
	for _, v := range Icosahedron(2).Vertices {
		assert.InDelta(t, 1, v.Len(), 1e-5)
	}
}

func TestIcosahedronIsCached(t *testing.T) {
	assert.Same(t, Icosahedron(1), Icosahedron(1))
	assert.Same(t, Icosahedron(-3), Icosahedron(0))
}

func TestBoxCounts(t *testing.T) {
	assert.Equal(t, 24, Box().VertexCount())
	assert.Equal(t, 12, Box().TriangleCount())
}

// TestConvexShapesFaceOutward checks that every face normal of the closed
// convex shapes points away from the origin.
func TestConvexShapesFaceOutward(t *testing.T) {
	convex := map[string]*Primitive{
		"box":               Box(),
		"octahedron":        Octahedron(),
		"octagonal-pyramid": OctagonalPyramid(),
		"diamond-prism":     DiamondPrism(),
		"hexagonal-prism":   HexagonalPrism(),
		"cylinder":          Cylinder(CylinderProps{RadialSegments: 12, TopCap: true, BottomCap: true}),
	}
	for name, p := range convex {
		for i, tri := range p.Indices {
			a, b, c := p.Vertices[tri[0]], p.Vertices[tri[1]], p.Vertices[tri[2]]
			centroid := a.Add(b).Add(c).Mul(1.0 / 3)
			n := faceNormal(a, b, c)
			assert.Greater(t, n.Dot(centroid), float32(0), "%s triangle %d faces inward", name, i)
		}
	}
}

// TestPerforatedHalvesTile checks that each perforated shape lies in one half
// space and that rotating it 180° about Z moves it into the other.
func TestPerforatedHalvesTile(t *testing.T) {
	rot := mgl32.HomogRotate3DZ(math32.Pi)
	cases := map[string]struct {
		p    *Primitive
		side func(v mgl32.Vec3) float32
	}{
		"box":        {PerforatedBox(), func(v mgl32.Vec3) float32 { return v[0] - v[1] }},
		"pyramid":    {PerforatedOctagonalPyramid(), func(v mgl32.Vec3) float32 { return v[1] }},
		"octahedron": {PerforatedOctahedron(), func(v mgl32.Vec3) float32 { return v[1] }},
	}
	for name, tc := range cases {
		for _, v := range tc.p.Vertices {
			assert.GreaterOrEqual(t, tc.side(v), float32(-1e-5), "%s vertex %v", name, v)
			r := mgl32.TransformCoordinate(v, rot)
			assert.LessOrEqual(t, tc.side(r), float32(1e-5), "%s rotated vertex %v", name, r)
		}
	}
}

func TestStarFallsBackToDefaultPointCount(t *testing.T) {
	p := Star(StarProps{OuterRadius: 1, InnerRadius: 0.5, Thickness: 0.5})
	// 10 outline points: 10 side quads + two fans of 10 triangles
	assert.Equal(t, 10*2+10+10, p.TriangleCount())
}

func TestCylinderDefaults(t *testing.T) {
	p := Cylinder(CylinderProps{})
	assert.Equal(t, DefaultRadialSegments*2, p.VertexCount())
	assert.Equal(t, DefaultRadialSegments*2, p.TriangleCount())
	assert.Same(t, p, Cylinder(CylinderProps{RadialSegments: DefaultRadialSegments}))
}

func TestPolygon(t *testing.T) {
	pts := Polygon(4, false, 1)
	require.Len(t, pts, 4)
	assert.InDelta(t, 1, pts[0][0], 1e-6)
	assert.InDelta(t, 0, pts[0][1], 1e-6)
	shifted := Polygon(4, true, 1)
	assert.InDelta(t, shifted[0][0], shifted[0][1], 1e-6)
}
