package visual

import (
	"slices"

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

func linkUpdateState(state *UpdateState, prev, next props.Props) {
	if prev.LinkRadius != next.LinkRadius || prev.RadialSegments != next.RadialSegments {
		state.CreateGeometry = true
	}
}

// linkBuilder sizes a builder for n cylinders.
func linkBuilder(n int, p props.Props) *mesh.Builder {
	segments := max(p.RadialSegments, 3)
	return mesh.NewBuilder(n*segments*2, n*segments*2, nil)
}

// IntraUnitLink draws one cylinder per bond inside a unit.
func IntraUnitLink() *MeshVisual[UnitsData] {
	return New(Recipe[UnitsData]{
		Name:                   "intra-unit-link",
		CreateGeometry:         createIntraUnitLinkMesh,
		CreateLocationIterator: intraUnitLinkIterator,
		CreateTransforms:       UnitsTransforms,
		Mark:                   markIntraUnitLink,
		SetUpdateState:         linkUpdateState,
		DiffData:               DiffUnits,
	})
}

func intraUnitLinkIterator(d UnitsData) *location.Iterator {
	units := d.Group.Units
	bonds := d.Group.Primary().Bonds()
	return location.New(bonds.Count(), len(units), func(group, instance int) location.Location {
		u := units[instance]
		return location.NewLink(u, bonds.A[group], u, bonds.B[group])
	})
}

func createIntraUnitLinkMesh(rt *task.Runtime, d UnitsData, _ theme.Theme, p props.Props) (*mesh.Mesh, error) {
	unit := d.Group.Primary()
	bonds := unit.Bonds()
	n := bonds.Count()
	b := linkBuilder(n, p)
	cylinder := primitive.CylinderProps{RadialSegments: p.RadialSegments}

	for i := 0; i < n; i++ {
		b.SetGroup(i)
		b.SetID(bonds.Order[i])
		b.AddCylinder(unit.InvariantPosition(bonds.A[i]), unit.InvariantPosition(bonds.B[i]), p.LinkRadius, cylinder)

		if err := rt.Step(i, n, "intra-unit links"); err != nil {
			return nil, err
		}
	}
	return b.GetMesh()
}

// markIntraUnitLink marks bonds whose both ends are selected; link
// selections are looked up directly.
func markIntraUnitLink(d UnitsData, it *location.Iterator, l loci.Loci, apply func(start, end int) bool) bool {
	if _, ok := l.(*loci.ElementLoci); !ok {
		return MarkByLookup(it, l, apply)
	}
	bonds := d.Group.Primary().Bonds()
	changed := false
	for instance, u := range d.Group.Units {
		selected := loci.IndicesOf(l, u)
		if len(selected) == 0 {
			continue
		}
		for g := 0; g < bonds.Count(); g++ {
			if contains(selected, bonds.A[g]) && contains(selected, bonds.B[g]) {
				i := instance*it.GroupCount + g
				if apply(i, i+1) {
					changed = true
				}
			}
		}
	}
	return changed
}

// InterUnitLink draws one cylinder per bond between two units, in
// structure coordinates.
func InterUnitLink() *MeshVisual[ComplexData] {
	return New(Recipe[ComplexData]{
		Name:                   "inter-unit-link",
		CreateGeometry:         createInterUnitLinkMesh,
		CreateLocationIterator: interUnitLinkIterator,
		CreateTransforms:       ComplexTransforms,
		Mark:                   markInterUnitLink,
		SetUpdateState:         linkUpdateState,
	})
}

func interUnitLinkIterator(d ComplexData) *location.Iterator {
	bonds := d.Structure.InterBonds
	return location.New(len(bonds), 1, func(group, _ int) location.Location {
		return interLink(bonds[group])
	})
}

func interLink(b structure.InterBond) location.Link {
	return location.NewLink(b.AUnit, b.AIndex, b.BUnit, b.BIndex)
}

func createInterUnitLinkMesh(rt *task.Runtime, d ComplexData, _ theme.Theme, p props.Props) (*mesh.Mesh, error) {
	bonds := d.Structure.InterBonds
	n := len(bonds)
	b := linkBuilder(n, p)
	cylinder := primitive.CylinderProps{RadialSegments: p.RadialSegments}

	var start, end mgl32.Vec3
	for i, bond := range bonds {
		start = bond.AUnit.Position(bond.AIndex)
		end = bond.BUnit.Position(bond.BIndex)
		b.SetGroup(i)
		b.SetID(bond.Order)
		b.AddCylinder(start, end, p.LinkRadius, cylinder)

		if err := rt.Step(i, n, "inter-unit links"); err != nil {
			return nil, err
		}
	}
	return b.GetMesh()
}

func markInterUnitLink(d ComplexData, it *location.Iterator, l loci.Loci, apply func(start, end int) bool) bool {
	if _, ok := l.(*loci.ElementLoci); !ok {
		return MarkByLookup(it, l, apply)
	}
	changed := false
	for g, bond := range d.Structure.InterBonds {
		a := location.Element{Unit: bond.AUnit, Element: bond.AIndex}
		b := location.Element{Unit: bond.BUnit, Element: bond.BIndex}
		if loci.Contains(l, a) && loci.Contains(l, b) && apply(g, g+1) {
			changed = true
		}
	}
	return changed
}

func contains(sorted []int, i int) bool {
	_, ok := slices.BinarySearch(sorted, i)
	return ok
}
