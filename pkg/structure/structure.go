package structure

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrInvalidModel is returned by New for models with blocking validation
// findings.
var ErrInvalidModel = errors.New("structure: invalid model")

// SymmetryGroup is a set of units with identical invariant content that
// differ only by operator. Geometry is built once for the group and
// instanced per unit.
type SymmetryGroup struct {
	Units []*Unit
	Hash  uint64 // invariant content: chain and element set
}

// Primary returns the unit whose invariant positions are used for
// geometry.
func (g *SymmetryGroup) Primary() *Unit {
	return g.Units[0]
}

// ElementCount returns the number of elements per unit.
func (g *SymmetryGroup) ElementCount() int {
	return g.Primary().ElementCount()
}

// InstanceIndex returns the position of u within the group, or -1.
func (g *SymmetryGroup) InstanceIndex(u *Unit) int {
	for i, v := range g.Units {
		if v == u {
			return i
		}
	}
	return -1
}

// TransformHash hashes the operators of all units, in order.
func (g *SymmetryGroup) TransformHash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, u := range g.Units {
		for _, f := range u.Operator.Matrix {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// Structure is a model expanded into units.
type Structure struct {
	Model         *Model
	Units         []*Unit
	Groups        []*SymmetryGroup
	InterBonds    []InterBond
	Carbohydrates []Carbohydrate

	unitIndex map[int]int
	carbIndex map[carbKey]int
}

type carbKey struct {
	unit    int
	element int
}

type unitPlan struct {
	chain    string
	elements []int
	op       Operator
}

// New validates m and expands it into one unit per chain and operator.
// With no operators the identity is used.
func New(m *Model, ops ...Operator) (*Structure, error) {
	if errs := lo.Filter(Validate(m), func(e ValidationError, _ int) bool {
		return e.Severity == SeverityError
	}); len(errs) > 0 {
		return nil, errors.Wrap(ErrInvalidModel, errs[0].Error())
	}
	if len(ops) == 0 {
		ops = []Operator{IdentityOperator()}
	}

	byChain := make(map[string][]int)
	for i, a := range m.Atoms {
		byChain[a.Chain] = append(byChain[a.Chain], i)
	}
	var plans []unitPlan
	for _, op := range ops {
		for _, chain := range m.Chains() {
			plans = append(plans, unitPlan{chain: chain, elements: byChain[chain], op: op})
		}
	}
	return assemble(m, plans), nil
}

// Empty returns a structure without units.
func Empty() *Structure {
	return assemble(&Model{}, nil)
}

// Filter returns a new structure restricted to the elements for which keep
// returns true. Units are kept even when they end up empty, so unit ids
// stay stable.
func (s *Structure) Filter(keep func(u *Unit, i int) bool) *Structure {
	plans := make([]unitPlan, len(s.Units))
	for k, u := range s.Units {
		var elements []int
		for i, e := range u.Elements {
			if keep(u, i) {
				elements = append(elements, e)
			}
		}
		plans[k] = unitPlan{chain: u.Chain, elements: elements, op: u.Operator}
	}
	return assemble(s.Model, plans)
}

// assemble builds units, symmetry groups, bonds and carbohydrates.
func assemble(m *Model, plans []unitPlan) *Structure {
	s := &Structure{
		Model:     m,
		unitIndex: make(map[int]int, len(plans)),
		carbIndex: make(map[carbKey]int),
	}

	type invariant struct {
		id    int
		bonds *IntraBonds
		group *SymmetryGroup
	}
	invariants := make(map[uint64]*invariant)
	for k, plan := range plans {
		h := contentHash(plan.chain, plan.elements)
		inv, ok := invariants[h]
		if !ok {
			inv = &invariant{
				id:    len(invariants),
				bonds: computeIntraBonds(m, plan.elements),
				group: &SymmetryGroup{Hash: h},
			}
			invariants[h] = inv
			s.Groups = append(s.Groups, inv.group)
		}
		u := &Unit{
			ID:          k,
			InvariantID: inv.id,
			Kind:        UnitAtomic,
			Chain:       plan.chain,
			Elements:    plan.elements,
			Operator:    plan.op,
			model:       m,
			bonds:       inv.bonds,
		}
		s.Units = append(s.Units, u)
		s.unitIndex[u.ID] = k
		inv.group.Units = append(inv.group.Units, u)
	}

	s.InterBonds = computeInterBonds(m, s.Units)
	s.Carbohydrates = findCarbohydrates(s.Units)
	for i, c := range s.Carbohydrates {
		s.carbIndex[carbKey{c.Unit.ID, c.AnomericCarbon}] = i
	}
	return s
}

func contentHash(chain string, elements []int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(chain))
	h.Write([]byte{0})
	var buf [8]byte
	for _, e := range elements {
		binary.LittleEndian.PutUint64(buf[:], uint64(e))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// IsEmpty reports whether the structure has no elements.
func (s *Structure) IsEmpty() bool {
	return s.ElementCount() == 0
}

// ElementCount returns the total number of elements over all units.
func (s *Structure) ElementCount() int {
	return lo.SumBy(s.Units, func(u *Unit) int { return u.ElementCount() })
}

// UnitIndexOf returns the position of the unit with the given id in Units.
func (s *Structure) UnitIndexOf(id int) (int, bool) {
	i, ok := s.unitIndex[id]
	return i, ok
}

// Unit returns the unit with the given id, or nil.
func (s *Structure) Unit(id int) *Unit {
	if i, ok := s.unitIndex[id]; ok {
		return s.Units[i]
	}
	return nil
}

// Contains reports whether u belongs to this structure.
func (s *Structure) Contains(u *Unit) bool {
	if u == nil {
		return false
	}
	i, ok := s.unitIndex[u.ID]
	return ok && s.Units[i] == u
}

// CarbohydrateIndex returns the index of the carbohydrate whose anomeric
// carbon is element i of u.
func (s *Structure) CarbohydrateIndex(u *Unit, i int) (int, bool) {
	idx, ok := s.carbIndex[carbKey{u.ID, i}]
	return idx, ok
}

// GroupOf returns the symmetry group containing u, or nil.
func (s *Structure) GroupOf(u *Unit) *SymmetryGroup {
	for _, g := range s.Groups {
		if slices.Contains(g.Units, u) {
			return g
		}
	}
	return nil
}

// Summary is a one-line description used in logs and host APIs.
func (s *Structure) Summary() string {
	label := lo.Ternary(s.Model.Label == "", "structure", s.Model.Label)
	return fmt.Sprintf("%s: %d units, %d groups, %d elements, %d inter-unit bonds, %d carbohydrates",
		label, len(s.Units), len(s.Groups), s.ElementCount(), len(s.InterBonds), len(s.Carbohydrates))
}
