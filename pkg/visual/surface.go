package visual

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/kernel"
	"github.com/arose/molstar/pkg/kernel/sdfx"
	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/theme"
)

// MolecularSurface draws the solvent excluded surface of each unit using
// the sdfx kernel. Every triangle belongs to the group of the element
// nearest to its centroid.
func MolecularSurface() *MeshVisual[UnitsData] {
	return MolecularSurfaceWith(sdfx.New())
}

// MolecularSurfaceWith is MolecularSurface on a custom kernel.
func MolecularSurfaceWith(k kernel.Kernel) *MeshVisual[UnitsData] {
	return New(Recipe[UnitsData]{
		Name: "molecular-surface",
		CreateGeometry: func(rt *task.Runtime, d UnitsData, th theme.Theme, p props.Props) (*mesh.Mesh, error) {
			return createMolecularSurfaceMesh(rt, k, d, th, p)
		},
		CreateLocationIterator: ElementIterator,
		CreateTransforms:       UnitsTransforms,
		SetUpdateState: func(state *UpdateState, prev, next props.Props) {
			if prev.ProbeRadius != next.ProbeRadius || prev.SurfaceResolution != next.SurfaceResolution {
				state.CreateGeometry = true
			}
		},
		DiffData: DiffUnits,
	})
}

// createMolecularSurfaceMesh rolls a probe over the element spheres: the
// union of spheres grown by the probe radius, shrunk back by it.
func createMolecularSurfaceMesh(rt *task.Runtime, k kernel.Kernel, d UnitsData, th theme.Theme, p props.Props) (*mesh.Mesh, error) {
	unit := d.Group.Primary()
	n := unit.ElementCount()
	spheres := make([]kernel.Sphere, n)
	positions := make([]mgl32.Vec3, n)
	for i := range spheres {
		positions[i] = unit.InvariantPosition(i)
		r := th.Size.Size(location.Element{Unit: unit, Element: i})
		spheres[i] = kernel.Sphere{Center: positions[i], Radius: r + p.ProbeRadius}
	}

	solid, err := k.Spheres(spheres)
	if errors.Is(err, kernel.ErrEmptySolid) {
		return mesh.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	if p.ProbeRadius > 0 {
		solid = k.Offset(solid, -float64(p.ProbeRadius))
	}
	if err := rt.Update(task.Progress{Message: "molecular surface", IsIndeterminate: true}); err != nil {
		return nil, err
	}
	km, err := k.ToMesh(solid, float64(p.SurfaceResolution))
	if err != nil {
		return nil, err
	}

	lookup := structure.NewLookup3D(positions)
	nt := km.TriangleCount()
	b := mesh.NewBuilder(3*nt, nt, nil)
	for i := 0; i < nt; i++ {
		tri := km.Triangle(i)
		p0, p1, p2 := km.Vertex(tri[0]), km.Vertex(tri[1]), km.Vertex(tri[2])
		if nearest, ok := lookup.Nearest(p0.Add(p1).Add(p2).Mul(1.0 / 3)); ok {
			b.SetGroup(nearest)
		}
		b.AddTriangle(p0, p1, p2, km.Normal(tri[0]))

		if err := rt.Step(i, nt, "molecular surface"); err != nil {
			return nil, err
		}
	}
	return b.GetMesh()
}
