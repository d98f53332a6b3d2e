package structure

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl32"
)

// R-tree fan-out; tuned for a few thousand points per unit.
const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	pointTolerance   = 1e-4
)

type spatialPoint struct {
	index int
	rect  rtreego.Rect
}

func (p *spatialPoint) Bounds() rtreego.Rect { return p.rect }

func toPoint(v mgl32.Vec3) rtreego.Point {
	return rtreego.Point{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Lookup3D is a static spatial index over a set of points.
type Lookup3D struct {
	tree      *rtreego.Rtree
	positions []mgl32.Vec3
}

// NewLookup3D indexes positions. Results refer to indices into positions.
func NewLookup3D(positions []mgl32.Vec3) *Lookup3D {
	objs := make([]rtreego.Spatial, len(positions))
	for i, p := range positions {
		objs[i] = &spatialPoint{index: i, rect: toPoint(p).ToRect(pointTolerance)}
	}
	return &Lookup3D{
		tree:      rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, objs...),
		positions: positions,
	}
}

// Len returns the number of indexed points.
func (l *Lookup3D) Len() int {
	return len(l.positions)
}

// Find returns the sorted indices of all points within radius of center.
func (l *Lookup3D) Find(center mgl32.Vec3, radius float32) []int {
	if len(l.positions) == 0 || radius < 0 {
		return nil
	}
	hits := l.tree.SearchIntersect(toPoint(center).ToRect(float64(radius)))
	out := make([]int, 0, len(hits))
	r2 := radius * radius
	for _, h := range hits {
		i := h.(*spatialPoint).index
		if l.positions[i].Sub(center).LenSqr() <= r2 {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Nearest returns the index of the point closest to p. ok is false when
// the lookup is empty.
func (l *Lookup3D) Nearest(p mgl32.Vec3) (index int, ok bool) {
	if len(l.positions) == 0 {
		return -1, false
	}
	hit := l.tree.NearestNeighbor(toPoint(p))
	if hit == nil {
		return -1, false
	}
	return hit.(*spatialPoint).index, true
}
