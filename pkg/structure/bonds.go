package structure

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// BondTolerance is added to the sum of covalent radii when bonds are
// derived from distances.
const BondTolerance = 0.4

// minBondDistance keeps overlapping alternate positions from bonding.
const minBondDistance = 0.4

// maxCovalentRadius bounds the neighbour search radius.
const maxCovalentRadius = 2.03

// IntraBonds holds the bonds inside one unit. Indices are unit-local and
// every bond is stored once with A < B, sorted by (A, B).
type IntraBonds struct {
	A     []int
	B     []int
	Order []int

	offsets   []int
	neighbors []int
}

// Count returns the number of bonds.
func (b *IntraBonds) Count() int {
	if b == nil {
		return 0
	}
	return len(b.A)
}

// Neighbors returns the unit-local indices bonded to element i.
func (b *IntraBonds) Neighbors(i int) []int {
	if b == nil || i+1 >= len(b.offsets) {
		return nil
	}
	return b.neighbors[b.offsets[i]:b.offsets[i+1]]
}

// Find returns the index of the bond between a and c, or -1.
func (b *IntraBonds) Find(a, c int) int {
	if a > c {
		a, c = c, a
	}
	n := len(b.A)
	i := sort.Search(n, func(k int) bool {
		return b.A[k] > a || (b.A[k] == a && b.B[k] >= c)
	})
	if i < n && b.A[i] == a && b.B[i] == c {
		return i
	}
	return -1
}

type bondPair struct {
	a, b, order int
}

func newIntraBonds(elementCount int, pairs []bondPair) *IntraBonds {
	for i := range pairs {
		if pairs[i].a > pairs[i].b {
			pairs[i].a, pairs[i].b = pairs[i].b, pairs[i].a
		}
		if pairs[i].order <= 0 {
			pairs[i].order = 1
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	bonds := &IntraBonds{offsets: make([]int, elementCount+1)}
	degree := make([]int, elementCount)
	for i, p := range pairs {
		if p.a == p.b || (i > 0 && p.a == pairs[i-1].a && p.b == pairs[i-1].b) {
			continue
		}
		bonds.A = append(bonds.A, p.a)
		bonds.B = append(bonds.B, p.b)
		bonds.Order = append(bonds.Order, p.order)
		degree[p.a]++
		degree[p.b]++
	}
	for i, d := range degree {
		bonds.offsets[i+1] = bonds.offsets[i] + d
	}
	bonds.neighbors = make([]int, bonds.offsets[elementCount])
	fill := append([]int(nil), bonds.offsets[:elementCount]...)
	for k := range bonds.A {
		a, c := bonds.A[k], bonds.B[k]
		bonds.neighbors[fill[a]] = c
		fill[a]++
		bonds.neighbors[fill[c]] = a
		fill[c]++
	}
	for i := 0; i < elementCount; i++ {
		sort.Ints(bonds.neighbors[bonds.offsets[i]:bonds.offsets[i+1]])
	}
	return bonds
}

// bondThreshold is the maximum bonding distance between two elements.
func bondThreshold(a, b string) float32 {
	return Element(a).CovalentRadius + Element(b).CovalentRadius + BondTolerance
}

// computeIntraBonds derives the bonds of a unit with the given elements,
// either from the model's explicit bonds or from distances.
func computeIntraBonds(m *Model, elements []int) *IntraBonds {
	var pairs []bondPair
	if len(m.Bonds) > 0 {
		local := make(map[int]int, len(elements))
		for i, e := range elements {
			local[e] = i
		}
		for _, b := range m.Bonds {
			ia, okA := local[b.A]
			ib, okB := local[b.B]
			if okA && okB {
				pairs = append(pairs, bondPair{ia, ib, b.Order})
			}
		}
		return newIntraBonds(len(elements), pairs)
	}

	positions := make([]mgl32.Vec3, len(elements))
	for i, e := range elements {
		positions[i] = m.Atoms[e].Position
	}
	lookup := NewLookup3D(positions)
	for i, e := range elements {
		ea := m.Atoms[e].Element
		radius := Element(ea).CovalentRadius + maxCovalentRadius + BondTolerance
		for _, j := range lookup.Find(positions[i], radius) {
			if j <= i {
				continue
			}
			if distanceBonded(positions[i], positions[j], ea, m.Atoms[elements[j]].Element) {
				pairs = append(pairs, bondPair{i, j, 1})
			}
		}
	}
	return newIntraBonds(len(elements), pairs)
}

func distanceBonded(p, q mgl32.Vec3, a, b string) bool {
	if NormalizeSymbol(a) == "H" && NormalizeSymbol(b) == "H" {
		return false
	}
	d := p.Sub(q).Len()
	return d >= minBondDistance && d <= bondThreshold(a, b)
}

// InterBond is a bond between elements of two different units.
type InterBond struct {
	AUnit  *Unit
	AIndex int
	BUnit  *Unit
	BIndex int
	Order  int
}

// computeInterBonds derives bonds between units. Explicit model bonds
// connect chains within the same operator; otherwise every pair of units
// whose boundaries come close is searched by distance.
func computeInterBonds(m *Model, units []*Unit) []InterBond {
	var bonds []InterBond
	if len(m.Bonds) > 0 {
		type key struct {
			op    string
			model int
		}
		type owned struct {
			unit  *Unit
			index int
		}
		owner := make(map[key]owned)
		for _, u := range units {
			for i, e := range u.Elements {
				owner[key{u.Operator.Name, e}] = owned{u, i}
			}
		}
		for _, u := range units {
			for _, b := range m.Bonds {
				oa, okA := owner[key{u.Operator.Name, b.A}]
				ob, okB := owner[key{u.Operator.Name, b.B}]
				if !okA || !okB || oa.unit != u || ob.unit == u {
					continue
				}
				order := b.Order
				if order <= 0 {
					order = 1
				}
				bonds = append(bonds, orderedInterBond(oa.unit, oa.index, ob.unit, ob.index, order))
			}
		}
		return dedupeInterBonds(bonds)
	}

	for i, ua := range units {
		ca, ra := ua.Boundary()
		for _, ub := range units[i+1:] {
			cb, rb := ub.Boundary()
			if ua.ElementCount() == 0 || ub.ElementCount() == 0 {
				continue
			}
			if ca.Sub(cb).Len() > ra+rb+2*maxCovalentRadius+BondTolerance {
				continue
			}
			lookup := ub.Lookup()
			for ia := 0; ia < ua.ElementCount(); ia++ {
				pa := ua.Position(ia)
				ea := ua.Atom(ia).Element
				radius := Element(ea).CovalentRadius + maxCovalentRadius + BondTolerance
				for _, ib := range lookup.Find(pa, radius) {
					if distanceBonded(pa, ub.Position(ib), ea, ub.Atom(ib).Element) {
						bonds = append(bonds, InterBond{AUnit: ua, AIndex: ia, BUnit: ub, BIndex: ib, Order: 1})
					}
				}
			}
		}
	}
	return bonds
}

// orderedInterBond puts the unit with the smaller id first.
func orderedInterBond(ua *Unit, ia int, ub *Unit, ib int, order int) InterBond {
	if ua.ID > ub.ID {
		ua, ia, ub, ib = ub, ib, ua, ia
	}
	return InterBond{AUnit: ua, AIndex: ia, BUnit: ub, BIndex: ib, Order: order}
}

func dedupeInterBonds(bonds []InterBond) []InterBond {
	sort.SliceStable(bonds, func(i, j int) bool {
		a, b := bonds[i], bonds[j]
		switch {
		case a.AUnit.ID != b.AUnit.ID:
			return a.AUnit.ID < b.AUnit.ID
		case a.AIndex != b.AIndex:
			return a.AIndex < b.AIndex
		case a.BUnit.ID != b.BUnit.ID:
			return a.BUnit.ID < b.BUnit.ID
		default:
			return a.BIndex < b.BIndex
		}
	})
	out := bonds[:0]
	for i, b := range bonds {
		if i > 0 {
			p := out[len(out)-1]
			if p.AUnit == b.AUnit && p.AIndex == b.AIndex && p.BUnit == b.BUnit && p.BIndex == b.BIndex {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}
