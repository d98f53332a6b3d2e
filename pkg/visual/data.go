package visual

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
)

// UnitsData is the input of a units visual: one symmetry group of a
// structure. Geometry is built once from the primary unit's invariant
// positions and instanced per unit.
type UnitsData struct {
	Structure *structure.Structure
	Group     *structure.SymmetryGroup
}

func (d UnitsData) Root() *structure.Structure { return d.Structure }

func (d UnitsData) Label() string {
	if d.Group == nil || len(d.Group.Units) == 0 {
		return "empty"
	}
	return d.Group.Primary().Chain
}

// ComplexData is the input of a complex visual: a whole structure in
// structure coordinates with a single identity instance.
type ComplexData struct {
	Structure *structure.Structure
}

func (d ComplexData) Root() *structure.Structure { return d.Structure }

func (d ComplexData) Label() string {
	if d.Structure == nil || d.Structure.Model == nil || d.Structure.Model.Label == "" {
		return "structure"
	}
	return d.Structure.Model.Label
}

// UnitsTransforms returns the operator of every unit of the group.
func UnitsTransforms(d UnitsData) []float32 {
	ms := make([]mgl32.Mat4, len(d.Group.Units))
	for i, u := range d.Group.Units {
		ms[i] = u.Operator.Matrix
	}
	return render.Transforms(ms...)
}

// ComplexTransforms returns the single identity instance.
func ComplexTransforms(ComplexData) []float32 {
	return render.IdentityTransforms()
}

// ElementIterator enumerates the elements of every unit of the group:
// group = element, instance = unit.
func ElementIterator(d UnitsData) *location.Iterator {
	units := d.Group.Units
	return location.New(d.Group.ElementCount(), len(units), func(group, instance int) location.Location {
		return location.Element{Unit: units[instance], Element: group}
	})
}

// DiffUnits rebuilds geometry when the group content changes and
// transforms when only its operators do.
func DiffUnits(state *UpdateState, prev, next UnitsData) {
	if prev.Group.Hash != next.Group.Hash || prev.Structure.Model != next.Structure.Model {
		state.CreateGeometry = true
	}
	if prev.Group.TransformHash() != next.Group.TransformHash() {
		state.UpdateTransform = true
	}
}
