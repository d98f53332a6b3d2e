// Package loci defines structure-scoped selection values: the result of
// picking and the input of marking.
package loci

import (
	"fmt"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/structure"
)

// Loci is a selection value. Compare with AreEqual.
type Loci interface {
	isLoci()
}

// Empty is the empty selection.
type Empty struct{}

func (Empty) isLoci() {}

// EmptyLoci is the canonical empty selection.
var EmptyLoci Loci = Empty{}

// Element selects elements of one unit. Indices are unit-local, sorted and
// unique.
type Element struct {
	Unit    *structure.Unit
	Indices []int
}

// ElementLoci is a set of elements of a structure, ordered by unit
// position in the structure.
type ElementLoci struct {
	Structure *structure.Structure
	Elements  []Element
}

func (*ElementLoci) isLoci() {}

// LinkLoci is a set of links of a structure.
type LinkLoci struct {
	Structure *structure.Structure
	Links     []location.Link
}

func (*LinkLoci) isLoci() {}

// NewElementLoci normalizes elements into an ElementLoci: indices are
// sorted and deduplicated, entries for the same unit merged, and units
// without indices or foreign to s dropped. Returns EmptyLoci when nothing
// remains.
func NewElementLoci(s *structure.Structure, elements []Element) Loci {
	byUnit := make(map[*structure.Unit][]int)
	for _, e := range elements {
		if !s.Contains(e.Unit) {
			continue
		}
		for _, i := range e.Indices {
			if i >= 0 && i < e.Unit.ElementCount() {
				byUnit[e.Unit] = append(byUnit[e.Unit], i)
			}
		}
	}
	if len(byUnit) == 0 {
		return EmptyLoci
	}
	out := make([]Element, 0, len(byUnit))
	for u, idx := range byUnit {
		sort.Ints(idx)
		out = append(out, Element{Unit: u, Indices: slices.Compact(idx)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := s.UnitIndexOf(out[i].Unit.ID)
		b, _ := s.UnitIndexOf(out[j].Unit.ID)
		return a < b
	})
	return &ElementLoci{Structure: s, Elements: out}
}

// NewLinkLoci normalizes links (each ordered with NewLink, sorted and
// deduplicated) into a LinkLoci, or EmptyLoci when links is empty.
func NewLinkLoci(s *structure.Structure, links []location.Link) Loci {
	out := make([]location.Link, 0, len(links))
	for _, l := range links {
		if s.Contains(l.AUnit) && s.Contains(l.BUnit) {
			out = append(out, location.NewLink(l.AUnit, l.AIndex, l.BUnit, l.BIndex))
		}
	}
	if len(out) == 0 {
		return EmptyLoci
	}
	sort.Slice(out, func(i, j int) bool { return linkLess(out[i], out[j]) })
	out = slices.Compact(out)
	return &LinkLoci{Structure: s, Links: out}
}

func linkLess(a, b location.Link) bool {
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
}

// FromLocation converts a single location to a selection.
func FromLocation(s *structure.Structure, loc location.Location) Loci {
	switch l := loc.(type) {
	case location.Element:
		return NewElementLoci(s, []Element{{Unit: l.Unit, Indices: []int{l.Element}}})
	case location.Link:
		return NewLinkLoci(s, []location.Link{l})
	default:
		return EmptyLoci
	}
}

// IsEmpty reports whether l selects nothing.
func IsEmpty(l Loci) bool {
	switch l := l.(type) {
	case *ElementLoci:
		return l == nil || len(l.Elements) == 0
	case *LinkLoci:
		return l == nil || len(l.Links) == 0
	default:
		return true
	}
}

// StructureOf returns the structure a selection refers to, or nil.
func StructureOf(l Loci) *structure.Structure {
	switch l := l.(type) {
	case *ElementLoci:
		return l.Structure
	case *LinkLoci:
		return l.Structure
	default:
		return nil
	}
}

// Size returns the number of selected elements or links.
func Size(l Loci) int {
	switch l := l.(type) {
	case *ElementLoci:
		return lo.SumBy(l.Elements, func(e Element) int { return len(e.Indices) })
	case *LinkLoci:
		return len(l.Links)
	default:
		return 0
	}
}

// AreEqual compares two selections by value.
func AreEqual(a, b Loci) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) && IsEmpty(b)
	}
	switch a := a.(type) {
	case *ElementLoci:
		b, ok := b.(*ElementLoci)
		if !ok || a.Structure != b.Structure || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if a.Elements[i].Unit != b.Elements[i].Unit || !slices.Equal(a.Elements[i].Indices, b.Elements[i].Indices) {
				return false
			}
		}
		return true
	case *LinkLoci:
		b, ok := b.(*LinkLoci)
		return ok && a.Structure == b.Structure && slices.Equal(a.Links, b.Links)
	}
	return false
}

// Locations returns every location of the selection, in selection order.
func Locations(l Loci) []location.Location {
	var out []location.Location
	switch l := l.(type) {
	case *ElementLoci:
		for _, e := range l.Elements {
			for _, i := range e.Indices {
				out = append(out, location.Element{Unit: e.Unit, Element: i})
			}
		}
	case *LinkLoci:
		for _, link := range l.Links {
			out = append(out, link)
		}
	}
	return out
}

// Contains reports whether the selection includes the element location.
func Contains(l Loci, loc location.Element) bool {
	el, ok := l.(*ElementLoci)
	if !ok {
		return false
	}
	for _, e := range el.Elements {
		if e.Unit == loc.Unit {
			_, found := slices.BinarySearch(e.Indices, loc.Element)
			return found
		}
	}
	return false
}

// IndicesOf returns the selected indices of unit u, or nil.
func IndicesOf(l Loci, u *structure.Unit) []int {
	el, ok := l.(*ElementLoci)
	if !ok {
		return nil
	}
	for _, e := range el.Elements {
		if e.Unit == u {
			return e.Indices
		}
	}
	return nil
}

// Describe returns a short human-readable label of the selection.
func Describe(l Loci) string {
	switch l := l.(type) {
	case *ElementLoci:
		if Size(l) == 1 {
			return location.Element{Unit: l.Elements[0].Unit, Element: l.Elements[0].Indices[0]}.String()
		}
		return fmt.Sprintf("%d elements in %d units", Size(l), len(l.Elements))
	case *LinkLoci:
		if len(l.Links) == 1 {
			return l.Links[0].String()
		}
		return fmt.Sprintf("%d links", len(l.Links))
	default:
		return "nothing"
	}
}
