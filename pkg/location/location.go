// Package location identifies single structural entities and enumerates
// them in the fixed (instance, group) order shared by theming, mesh
// construction, picking and marking.
package location

import (
	"fmt"

	"github.com/arose/molstar/pkg/structure"
)

// Location is a transient handle to one structural entity. Implementations
// are comparable values and can be used as map keys.
type Location interface {
	isLocation()
	String() string
}

// Null is the location of nothing. It is returned for out of range
// lookups.
type Null struct{}

func (Null) isLocation()    {}
func (Null) String() string { return "null" }

// Element is one element (atom) of a unit. Element is unit-local.
type Element struct {
	Unit    *structure.Unit
	Element int
}

func (Element) isLocation() {}

func (l Element) String() string {
	if l.Unit == nil {
		return fmt.Sprintf("element %d", l.Element)
	}
	a := l.Unit.Atom(l.Element)
	return fmt.Sprintf("%s %s%d %s", l.Unit.Label(), a.Residue, a.SeqID, a.Name)
}

// Atom returns the model atom of the location.
func (l Element) Atom() structure.Atom {
	return l.Unit.Atom(l.Element)
}

// Link is a bond between two elements, possibly of different units.
type Link struct {
	AUnit  *structure.Unit
	AIndex int
	BUnit  *structure.Unit
	BIndex int
}

func (Link) isLocation() {}

func (l Link) String() string {
	return fmt.Sprintf("link %s:%d - %s:%d", unitLabel(l.AUnit), l.AIndex, unitLabel(l.BUnit), l.BIndex)
}

// NewLink returns the link between (ua, ia) and (ub, ib) with the lower
// (unit id, index) end first, so both directions compare equal.
func NewLink(ua *structure.Unit, ia int, ub *structure.Unit, ib int) Link {
	if ub.ID < ua.ID || (ub.ID == ua.ID && ib < ia) {
		ua, ia, ub, ib = ub, ib, ua, ia
	}
	return Link{AUnit: ua, AIndex: ia, BUnit: ub, BIndex: ib}
}

// Ends returns the element locations of both link ends.
func (l Link) Ends() (Element, Element) {
	return Element{Unit: l.AUnit, Element: l.AIndex}, Element{Unit: l.BUnit, Element: l.BIndex}
}

func unitLabel(u *structure.Unit) string {
	if u == nil {
		return "?"
	}
	return u.Label()
}

// Anchor returns the element a location is themed by: the element itself,
// or the first end of a link.
func Anchor(l Location) (Element, bool) {
	switch l := l.(type) {
	case Element:
		return l, l.Unit != nil
	case Link:
		return Element{Unit: l.AUnit, Element: l.AIndex}, l.AUnit != nil
	default:
		return Element{}, false
	}
}
