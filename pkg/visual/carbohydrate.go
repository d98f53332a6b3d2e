package visual

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/primitive"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/theme"
)

// Shape is the symbol drawn for a saccharide type.
type Shape int

const (
	FilledSphere Shape = iota
	FilledCube
	CrossedCube
	DividedDiamond
	FilledCone
	DevidedCone
	FlatBox
	FilledStar
	FilledDiamond
	FlatDiamond
	FlatHexagon
	Pentagon
)

var shapeNames = [...]string{
	"filled-sphere", "filled-cube", "crossed-cube", "divided-diamond", "filled-cone",
	"devided-cone", "flat-box", "filled-star", "filled-diamond", "flat-diamond",
	"flat-hexagon", "pentagon",
}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// IsDivided reports whether the shape is drawn as two groups.
func (s Shape) IsDivided() bool {
	return s == CrossedCube || s == DevidedCone || s == DividedDiamond
}

// SaccharideShape maps a saccharide type to its symbol. Unknown types get
// FlatHexagon.
func SaccharideShape(t structure.SaccharideType) Shape {
	switch t {
	case structure.Hexose:
		return FilledSphere
	case structure.HexNAc:
		return FilledCube
	case structure.Hexosamine:
		return CrossedCube
	case structure.Hexuronate:
		return DividedDiamond
	case structure.Deoxyhexose:
		return FilledCone
	case structure.DeoxyhexNAc:
		return DevidedCone
	case structure.DiDeoxyhexose:
		return FlatBox
	case structure.Pentose:
		return FilledStar
	case structure.Deoxynonulosonate:
		return FilledDiamond
	case structure.DiDeoxynonulosonate:
		return FlatDiamond
	case structure.Assigned:
		return Pentagon
	default:
		return FlatHexagon
	}
}

const (
	sideFactor   = 1.75 * 2 * 0.806 // 0.806 == cos(pi/4)
	radiusFactor = 1.75
)

var (
	// rotX90 turns the primitives' Z thickness onto the ring normal.
	rotX90  = mgl32.HomogRotate3DX(math32.Pi / 2)
	rotZ90  = mgl32.HomogRotate3DZ(math32.Pi / 2)
	rotZ180 = mgl32.HomogRotate3DZ(math32.Pi)
	star    = primitive.Star(primitive.DefaultStarProps)
)

// CarbohydrateSymbol draws one symbol per monosaccharide at its ring
// center, oriented by the ring normal and the anomeric direction. Every
// carbohydrate i owns groups 2i and 2i+1; the second is only drawn for
// divided shapes.
func CarbohydrateSymbol() *MeshVisual[ComplexData] {
	return New(Recipe[ComplexData]{
		Name:                   "carbohydrate-symbol",
		CreateGeometry:         createCarbohydrateSymbolMesh,
		CreateLocationIterator: CarbohydrateIterator,
		CreateTransforms:       ComplexTransforms,
		Mark:                   markCarbohydrate,
		SetUpdateState: func(state *UpdateState, prev, next props.Props) {
			if prev.Detail != next.Detail {
				state.CreateGeometry = true
			}
		},
	})
}

// CarbohydrateIterator has two groups per carbohydrate; both resolve to
// the anomeric carbon and the odd one is secondary.
func CarbohydrateIterator(d ComplexData) *location.Iterator {
	carbs := d.Structure.Carbohydrates
	return location.New(2*len(carbs), 1, func(group, _ int) location.Location {
		c := carbs[group/2]
		return location.Element{Unit: c.Unit, Element: c.AnomericCarbon}
	}, location.WithSecondary(func(group, _ int) bool {
		return group%2 == 1
	}))
}

// targetTo returns the frame at eye looking at target with up as the Y
// hint: local Z points away from target.
func targetTo(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := eye.Sub(target)
	if z.LenSqr() == 0 {
		z = mgl32.Vec3{0, 0, 1}
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.LenSqr() == 0 {
		// up parallel to z; any perpendicular works
		x = mgl32.Vec3{z[1], -z[0], 0}
		if x.LenSqr() == 0 {
			x = mgl32.Vec3{1, 0, 0}
		}
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), eye.Vec4(1))
}

func scale(s float32) mgl32.Mat4 {
	return mgl32.Scale3D(s, s, s)
}

// addCarbohydrateSymbol appends the symbol of one carbohydrate. Divided
// shapes put the 180° turned half into group secondary.
func addCarbohydrateSymbol(b *mesh.Builder, shape Shape, c structure.Carbohydrate, size float32, detail, primary, secondary int) {
	side := size * sideFactor
	t := targetTo(c.Center, c.Center.Add(c.Direction), c.Normal)

	b.SetGroup(primary)
	switch shape {
	case FilledSphere:
		b.AddSphere(c.Center, size*radiusFactor, detail)
	case FilledCube:
		b.Add(t.Mul4(scale(side)), primitive.Box())
	case CrossedCube:
		t = t.Mul4(scale(side))
		b.Add(t, primitive.PerforatedBox())
		b.SetGroup(secondary)
		b.Add(t.Mul4(rotZ180), primitive.PerforatedBox())
	case FilledCone:
		b.Add(t.Mul4(scale(side*1.2)), primitive.OctagonalPyramid())
	case DevidedCone:
		t = t.Mul4(scale(side * 1.2))
		b.Add(t, primitive.PerforatedOctagonalPyramid())
		b.SetGroup(secondary)
		b.Add(t.Mul4(rotZ180), primitive.PerforatedOctagonalPyramid())
	case FlatBox:
		b.Add(t.Mul4(rotX90).Mul4(mgl32.Scale3D(side, side, side/2)), primitive.Box())
	case FilledStar:
		b.Add(t.Mul4(rotX90).Mul4(scale(side)), star)
	case FilledDiamond:
		b.Add(t.Mul4(rotX90).Mul4(scale(side*1.4)), primitive.Octahedron())
	case DividedDiamond:
		t = t.Mul4(rotX90).Mul4(scale(side * 1.4))
		b.Add(t, primitive.PerforatedOctahedron())
		b.SetGroup(secondary)
		b.Add(t.Mul4(rotZ180), primitive.PerforatedOctahedron())
	case FlatDiamond:
		b.Add(t.Mul4(rotX90).Mul4(mgl32.Scale3D(side, side/2, side/2)), primitive.DiamondPrism())
	case Pentagon:
		b.Add(t.Mul4(rotX90).Mul4(mgl32.Scale3D(side, side, side/2)), primitive.PentagonalPrism())
	default:
		b.Add(t.Mul4(rotX90).Mul4(rotZ90).Mul4(mgl32.Scale3D(side/1.5, side, side/2)), primitive.HexagonalPrism())
	}
}

func createCarbohydrateSymbolMesh(rt *task.Runtime, d ComplexData, th theme.Theme, p props.Props) (*mesh.Mesh, error) {
	b := mesh.NewBuilder(256, 128, nil)
	carbs := d.Structure.Carbohydrates
	n := len(carbs)

	for i, c := range carbs {
		size := th.Size.Size(location.Element{Unit: c.Unit, Element: c.AnomericCarbon})
		addCarbohydrateSymbol(b, SaccharideShape(c.Saccharide.Type), c, size, p.Detail, 2*i, 2*i+1)

		if err := rt.Step(i, n, "carbohydrate symbols"); err != nil {
			return nil, err
		}
	}
	return b.GetMesh()
}

// markCarbohydrate marks both groups of every carbohydrate whose anomeric
// carbon is selected.
func markCarbohydrate(d ComplexData, _ *location.Iterator, l loci.Loci, apply func(start, end int) bool) bool {
	el, ok := l.(*loci.ElementLoci)
	if !ok {
		return false
	}
	changed := false
	for _, e := range el.Elements {
		for _, i := range e.Indices {
			if idx, ok := d.Structure.CarbohydrateIndex(e.Unit, i); ok && apply(2*idx, 2*idx+2) {
				changed = true
			}
		}
	}
	return changed
}
