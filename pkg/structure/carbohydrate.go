package structure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// SaccharideType is the chemical classification of a monosaccharide
// component.
type SaccharideType int

const (
	SaccharideUnknown SaccharideType = iota
	Hexose
	HexNAc
	Hexosamine
	Hexuronate
	Deoxyhexose
	DeoxyhexNAc
	DiDeoxyhexose
	Pentose
	Deoxynonulosonate
	DiDeoxynonulosonate
	Assigned
)

var saccharideTypeNames = map[SaccharideType]string{
	SaccharideUnknown:   "unknown",
	Hexose:              "hexose",
	HexNAc:              "hexnac",
	Hexosamine:          "hexosamine",
	Hexuronate:          "hexuronate",
	Deoxyhexose:         "deoxyhexose",
	DeoxyhexNAc:         "deoxyhexnac",
	DiDeoxyhexose:       "di-deoxyhexose",
	Pentose:             "pentose",
	Deoxynonulosonate:   "deoxynonulosonate",
	DiDeoxynonulosonate: "di-deoxynonulosonate",
	Assigned:            "assigned",
}

func (t SaccharideType) String() string {
	if s, ok := saccharideTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SaccharideType(%d)", int(t))
}

// SaccharideColor is a color of the symbol nomenclature for glycans.
type SaccharideColor int

const (
	ColorWhite SaccharideColor = iota
	ColorBlue
	ColorGreen
	ColorYellow
	ColorOrange
	ColorPink
	ColorPurple
	ColorLightBlue
	ColorBrown
	ColorRed
)

// Saccharide describes one known monosaccharide component.
type Saccharide struct {
	Abbr  string
	Type  SaccharideType
	Color SaccharideColor
}

// UnknownSaccharide is returned for residues missing from the table.
var UnknownSaccharide = Saccharide{Abbr: "Unk", Type: SaccharideUnknown, Color: ColorWhite}

var saccharides = map[string]Saccharide{}

func init() {
	add := func(abbr string, t SaccharideType, c SaccharideColor, components ...string) {
		for _, comp := range components {
			saccharides[comp] = Saccharide{Abbr: abbr, Type: t, Color: c}
		}
	}
	add("Glc", Hexose, ColorBlue, "GLC", "BGC")
	add("Man", Hexose, ColorGreen, "MAN", "BMA")
	add("Gal", Hexose, ColorYellow, "GAL", "GLA")
	add("Gul", Hexose, ColorOrange, "GUP", "GL0")
	add("Alt", Hexose, ColorPink, "ALT")
	add("All", Hexose, ColorPurple, "ALL", "AFD")
	add("Tal", Hexose, ColorLightBlue, "TAL")
	add("Ido", Hexose, ColorBrown, "4N2")

	add("GlcNAc", HexNAc, ColorBlue, "NAG", "NDG")
	add("ManNAc", HexNAc, ColorGreen, "BM3")
	add("GalNAc", HexNAc, ColorYellow, "NGA", "A2G")

	add("GlcN", Hexosamine, ColorBlue, "GCS", "PA1")
	add("ManN", Hexosamine, ColorGreen, "95Z")
	add("GalN", Hexosamine, ColorYellow, "X6X", "1GN")

	add("GlcA", Hexuronate, ColorBlue, "GCU", "BDP")
	add("ManA", Hexuronate, ColorGreen, "MAV", "BEM")
	add("GalA", Hexuronate, ColorYellow, "ADA", "GTR")
	add("IdoA", Hexuronate, ColorBrown, "IDR")

	add("Qui", Deoxyhexose, ColorBlue, "G6D")
	add("Rha", Deoxyhexose, ColorGreen, "RAM", "RM4")
	add("Fuc", Deoxyhexose, ColorRed, "FUC", "FUL")

	add("QuiNAc", DeoxyhexNAc, ColorBlue, "Z9W")
	add("FucNAc", DeoxyhexNAc, ColorRed, "49T")

	add("Oli", DiDeoxyhexose, ColorBlue, "DDA")
	add("Tyv", DiDeoxyhexose, ColorGreen, "TYV")
	add("Abe", DiDeoxyhexose, ColorOrange, "ABE")
	add("Par", DiDeoxyhexose, ColorPink, "PZU")
	add("Dig", DiDeoxyhexose, ColorPurple, "Z3U")
	add("Col", DiDeoxyhexose, ColorLightBlue, "COL")

	add("Ara", Pentose, ColorGreen, "ARA", "ARB", "AHR", "FUB")
	add("Lyx", Pentose, ColorYellow, "LDY")
	add("Xyl", Pentose, ColorOrange, "XYS", "XYP")
	add("Rib", Pentose, ColorPink, "RIP", "0MK")

	add("Kdn", Deoxynonulosonate, ColorGreen, "KDN", "KDM")
	add("Neu5Ac", Deoxynonulosonate, ColorPurple, "SIA", "SLB")
	add("Neu5Gc", Deoxynonulosonate, ColorLightBlue, "NGC", "NGE")

	add("Pse", DiDeoxynonulosonate, ColorGreen, "6PZ")
	add("Leg", DiDeoxynonulosonate, ColorYellow, "LEG")

	add("Bac", Assigned, ColorBlue, "B6D")
	add("Kdo", Assigned, ColorYellow, "KDO")
	add("Dha", Assigned, ColorOrange, "DHA")
	add("MurNAc", Assigned, ColorPurple, "AMU")
	add("Api", Assigned, ColorPink, "XXM")
	add("Fru", Assigned, ColorGreen, "FRU")
	add("Tag", Assigned, ColorYellow, "T6T")
}

// LookupSaccharide classifies a residue (chemical component) name.
func LookupSaccharide(component string) (Saccharide, bool) {
	s, ok := saccharides[strings.ToUpper(strings.TrimSpace(component))]
	return s, ok
}

// Carbohydrate is a monosaccharide ring found in a unit. Element indices
// are unit-local; geometry is in structure coordinates.
type Carbohydrate struct {
	Unit           *Unit
	AnomericCarbon int
	Ring           []int // ring order, starting at the ring oxygen
	Residue        string
	SeqID          int
	Saccharide     Saccharide

	Center    mgl32.Vec3
	Normal    mgl32.Vec3
	Direction mgl32.Vec3
}

type residueKey struct {
	name  string
	seqID int
}

// findCarbohydrates locates saccharide rings in all units, in unit order
// and then residue order.
func findCarbohydrates(units []*Unit) []Carbohydrate {
	var out []Carbohydrate
	for _, u := range units {
		residues := make(map[residueKey][]int)
		var order []residueKey
		for i := 0; i < u.ElementCount(); i++ {
			a := u.Atom(i)
			if _, ok := LookupSaccharide(a.Residue); !ok {
				continue
			}
			k := residueKey{a.Residue, a.SeqID}
			if _, seen := residues[k]; !seen {
				order = append(order, k)
			}
			residues[k] = append(residues[k], i)
		}
		for _, k := range order {
			ring := findRing(u, residues[k])
			if ring == nil {
				continue
			}
			sacc, _ := LookupSaccharide(k.name)
			c := Carbohydrate{
				Unit:       u,
				Ring:       ring,
				Residue:    k.name,
				SeqID:      k.seqID,
				Saccharide: sacc,
			}
			c.AnomericCarbon = anomericCarbon(u, ring)
			c.Center, c.Normal, c.Direction = ringGeometry(u, ring, c.AnomericCarbon)
			out = append(out, c)
		}
	}
	return out
}

// findRing returns the smallest five or six membered ring through an
// oxygen of the residue, starting at that oxygen, or nil.
func findRing(u *Unit, members []int) []int {
	inResidue := make(map[int]bool, len(members))
	for _, m := range members {
		inResidue[m] = true
	}
	var best []int
	for _, o := range members {
		if NormalizeSymbol(u.Atom(o).Element) != "O" {
			continue
		}
		var nbs []int
		for _, n := range u.Bonds().Neighbors(o) {
			if inResidue[n] {
				nbs = append(nbs, n)
			}
		}
		for i := 0; i < len(nbs); i++ {
			for j := i + 1; j < len(nbs); j++ {
				path := shortestPath(u.Bonds(), inResidue, nbs[i], nbs[j], o, 5)
				if path == nil || len(path) < 4 {
					continue
				}
				ring := append([]int{o}, path...)
				if best == nil || len(ring) < len(best) {
					best = ring
				}
			}
		}
	}
	return best
}

// shortestPath finds the shortest path from a to b within the allowed set,
// never visiting excluded, with at most maxLen nodes.
func shortestPath(bonds *IntraBonds, allowed map[int]bool, a, b, excluded, maxLen int) []int {
	prev := map[int]int{a: -1}
	frontier := []int{a}
	for depth := 1; len(frontier) > 0 && depth < maxLen; depth++ {
		var next []int
		for _, cur := range frontier {
			for _, n := range bonds.Neighbors(cur) {
				if n == excluded || !allowed[n] {
					continue
				}
				if _, seen := prev[n]; seen {
					continue
				}
				prev[n] = cur
				if n == b {
					var path []int
					for v := b; v != -1; v = prev[v] {
						path = append(path, v)
					}
					// reverse into a -> b order
					for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
						path[l], path[r] = path[r], path[l]
					}
					return path
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return nil
}

// anomericCarbon picks the ring carbon next to the ring oxygen with the
// lowest locant (C1 for pyranoses, C2 for nonulosonates).
func anomericCarbon(u *Unit, ring []int) int {
	candidates := []int{ring[1], ring[len(ring)-1]}
	sort.Slice(candidates, func(i, j int) bool {
		return atomNameLess(u.Atom(candidates[i]).Name, u.Atom(candidates[j]).Name)
	})
	return candidates[0]
}

func atomNameLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ringGeometry computes the ring center, the ring plane normal (Newell's
// method) and the in-plane direction from the center to the anomeric
// carbon.
func ringGeometry(u *Unit, ring []int, anomeric int) (center, normal, direction mgl32.Vec3) {
	for _, r := range ring {
		center = center.Add(u.Position(r))
	}
	center = center.Mul(1 / float32(len(ring)))

	for i, r := range ring {
		p := u.Position(r)
		q := u.Position(ring[(i+1)%len(ring)])
		normal[0] += (p[1] - q[1]) * (p[2] + q[2])
		normal[1] += (p[2] - q[2]) * (p[0] + q[0])
		normal[2] += (p[0] - q[0]) * (p[1] + q[1])
	}
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	} else {
		normal = mgl32.Vec3{0, 0, 1}
	}

	d := u.Position(anomeric).Sub(center)
	d = d.Sub(normal.Mul(d.Dot(normal)))
	if l := d.Len(); l > 0 {
		direction = d.Mul(1 / l)
	} else {
		direction = mgl32.Vec3{1, 0, 0}
	}
	return center, normal, direction
}
