package structure

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// UnitKind classifies how a unit's elements are represented.
type UnitKind int

const (
	UnitAtomic UnitKind = iota // one element per atom site
)

func (k UnitKind) String() string {
	switch k {
	case UnitAtomic:
		return "atomic"
	default:
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
}

// Unit is one chain of the model placed by one operator. Element indices
// passed to Unit methods are unit-local: element i is model atom
// Elements[i].
type Unit struct {
	ID          int
	InvariantID int
	Kind        UnitKind
	Chain       string
	Elements    []int // sorted model atom indices
	Operator    Operator

	model *Model
	bonds *IntraBonds

	boundaryOnce sync.Once
	center       mgl32.Vec3
	radius       float32

	lookupOnce sync.Once
	lookup     *Lookup3D
}

// Label is a short human-readable unit name.
func (u *Unit) Label() string {
	return u.Chain + " " + u.Operator.Name
}

// ElementCount returns the number of elements in the unit.
func (u *Unit) ElementCount() int {
	return len(u.Elements)
}

// ModelIndex maps a unit-local element index to the model atom index.
func (u *Unit) ModelIndex(i int) int {
	return u.Elements[i]
}

// IndexOf maps a model atom index to the unit-local index.
func (u *Unit) IndexOf(modelIndex int) (int, bool) {
	i := sort.SearchInts(u.Elements, modelIndex)
	if i < len(u.Elements) && u.Elements[i] == modelIndex {
		return i, true
	}
	return -1, false
}

// Atom returns the model atom of element i.
func (u *Unit) Atom(i int) Atom {
	return u.model.Atoms[u.Elements[i]]
}

// InvariantPosition returns the model coordinates of element i, before the
// unit's operator is applied.
func (u *Unit) InvariantPosition(i int) mgl32.Vec3 {
	return u.model.Atoms[u.Elements[i]].Position
}

// Position returns the coordinates of element i with the operator applied.
func (u *Unit) Position(i int) mgl32.Vec3 {
	return u.Operator.Matrix.Mul4x1(u.InvariantPosition(i).Vec4(1)).Vec3()
}

// Bonds returns the unit's intra-unit bonds. Units of one symmetry group
// share the same bonds.
func (u *Unit) Bonds() *IntraBonds {
	return u.bonds
}

// Boundary returns a bounding sphere of the unit's positions.
func (u *Unit) Boundary() (center mgl32.Vec3, radius float32) {
	u.boundaryOnce.Do(func() {
		n := u.ElementCount()
		if n == 0 {
			return
		}
		var sum mgl32.Vec3
		for i := 0; i < n; i++ {
			sum = sum.Add(u.Position(i))
		}
		u.center = sum.Mul(1 / float32(n))
		for i := 0; i < n; i++ {
			u.radius = max(u.radius, u.Position(i).Sub(u.center).Len())
		}
	})
	return u.center, u.radius
}

// Lookup returns a spatial index over the unit's positions.
func (u *Unit) Lookup() *Lookup3D {
	u.lookupOnce.Do(func() {
		positions := make([]mgl32.Vec3, u.ElementCount())
		for i := range positions {
			positions[i] = u.Position(i)
		}
		u.lookup = NewLookup3D(positions)
	})
	return u.lookup
}
