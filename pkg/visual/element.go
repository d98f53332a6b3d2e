package visual

import (
	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/primitive"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/theme"
)

// ElementSphere draws one sphere per element, sized by the size theme.
func ElementSphere() *MeshVisual[UnitsData] {
	return New(Recipe[UnitsData]{
		Name:                   "element-sphere",
		CreateGeometry:         createElementSphereMesh,
		CreateLocationIterator: ElementIterator,
		CreateTransforms:       UnitsTransforms,
		SetUpdateState: func(state *UpdateState, prev, next props.Props) {
			if prev.Detail != next.Detail {
				state.CreateGeometry = true
			}
		},
		DiffData: DiffUnits,
	})
}

func createElementSphereMesh(rt *task.Runtime, d UnitsData, th theme.Theme, p props.Props) (*mesh.Mesh, error) {
	unit := d.Group.Primary()
	n := unit.ElementCount()
	vertexCount := n * primitive.IcosahedronVertexCount(p.Detail)
	b := mesh.NewBuilder(vertexCount, vertexCount/2, nil)

	for i := 0; i < n; i++ {
		radius := th.Size.Size(location.Element{Unit: unit, Element: i})
		b.SetGroup(i)
		b.AddSphere(unit.InvariantPosition(i), radius, p.Detail)

		if err := rt.Step(i, n, "element spheres"); err != nil {
			return nil, err
		}
	}
	return b.GetMesh()
}
