package loci

import (
	"slices"

	"github.com/arose/molstar/pkg/structure"
)

// Everything selects all elements of s.
func Everything(s *structure.Structure) Loci {
	elements := make([]Element, 0, len(s.Units))
	for _, u := range s.Units {
		idx := make([]int, u.ElementCount())
		for i := range idx {
			idx[i] = i
		}
		elements = append(elements, Element{Unit: u, Indices: idx})
	}
	return NewElementLoci(s, elements)
}

// Union returns the elements selected by any of ls. Link selections and
// selections of other structures are ignored.
func Union(s *structure.Structure, ls ...Loci) Loci {
	var elements []Element
	for _, l := range ls {
		if el, ok := l.(*ElementLoci); ok && el.Structure == s {
			elements = append(elements, el.Elements...)
		}
	}
	return NewElementLoci(s, elements)
}

// Intersect returns the elements selected by all of ls.
func Intersect(s *structure.Structure, ls ...Loci) Loci {
	if len(ls) == 0 {
		return EmptyLoci
	}
	acc := Union(s, ls[0])
	for _, l := range ls[1:] {
		acc = combine(s, acc, l, true)
	}
	return acc
}

// Subtract returns the elements of a that are not in b.
func Subtract(s *structure.Structure, a, b Loci) Loci {
	return combine(s, Union(s, a), b, false)
}

// Complement returns the elements of s not selected by l.
func Complement(s *structure.Structure, l Loci) Loci {
	return Subtract(s, Everything(s), l)
}

// combine keeps the indices of a that are (keep=true) or are not
// (keep=false) in b.
func combine(s *structure.Structure, a, b Loci, keep bool) Loci {
	ea, ok := a.(*ElementLoci)
	if !ok {
		return EmptyLoci
	}
	var out []Element
	for _, e := range ea.Elements {
		other := IndicesOf(b, e.Unit)
		if StructureOf(b) != s {
			other = nil
		}
		var idx []int
		for _, i := range e.Indices {
			if _, found := slices.BinarySearch(other, i); found == keep {
				idx = append(idx, i)
			}
		}
		out = append(out, Element{Unit: e.Unit, Indices: idx})
	}
	return NewElementLoci(s, out)
}
