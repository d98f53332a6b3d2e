package theme

import (
	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
)

// ---------------------------------------------------------------------------
// Color themes
// ---------------------------------------------------------------------------

func uniformColor(_ Context, p ColorProps) ColorTheme {
	return ColorTheme{
		Granularity: render.ColorUniform,
		Color:       func(location.Location, bool) Color { return p.Value },
	}
}

// elementIndexColor spreads the scale over all elements of the structure,
// in unit order.
func elementIndexColor(ctx Context, p ColorProps) ColorTheme {
	offsets := make(map[int]int)
	total := 0
	if ctx.Structure != nil {
		for _, u := range ctx.Structure.Units {
			offsets[u.ID] = total
			total += u.ElementCount()
		}
	}
	return ColorTheme{
		Granularity: render.ColorGroupInstance,
		Color: func(loc location.Location, _ bool) Color {
			e, ok := location.Anchor(loc)
			if !ok {
				return p.Value
			}
			off, ok := offsets[e.Unit.ID]
			if !ok {
				return p.Value
			}
			return p.Scale.Index(off+e.Element, total)
		},
	}
}

func chainIDColor(ctx Context, p ColorProps) ColorTheme {
	index := make(map[string]int)
	var chains []string
	if ctx.Structure != nil && ctx.Structure.Model != nil {
		chains = ctx.Structure.Model.Chains()
	}
	for i, c := range chains {
		index[c] = i
	}
	return ColorTheme{
		Granularity: render.ColorGroup,
		Color: func(loc location.Location, _ bool) Color {
			e, ok := location.Anchor(loc)
			if !ok {
				return p.Value
			}
			i, ok := index[e.Unit.Chain]
			if !ok {
				return p.Value
			}
			return p.Scale.Index(i, len(chains))
		},
	}
}

// elementColors are the Jmol CPK colors.
var elementColors = map[string]Color{
	"H": 0xffffff, "He": 0xd9ffff, "Li": 0xcc80ff, "B": 0xffb5b5,
	"C": 0x909090, "N": 0x3050f8, "O": 0xff0d0d, "F": 0x90e050,
	"Na": 0xab5cf2, "Mg": 0x8aff00, "P": 0xff8000, "S": 0xffff30,
	"Cl": 0x1ff01f, "K": 0x8f40d4, "Ca": 0x3dff00, "Mn": 0x9c7ac7,
	"Fe": 0xe06633, "Co": 0xf090a0, "Cu": 0xc88033, "Zn": 0x7d80b0,
	"Se": 0xffa100, "Br": 0xa62929, "I": 0x940094,
}

// unknownElementColor marks elements missing from elementColors.
const unknownElementColor Color = 0xff1493

// ElementColor returns the CPK color of an element symbol.
func ElementColor(symbol string) Color {
	if c, ok := elementColors[structure.NormalizeSymbol(symbol)]; ok {
		return c
	}
	return unknownElementColor
}

func elementSymbolColor(_ Context, p ColorProps) ColorTheme {
	return ColorTheme{
		Granularity: render.ColorGroup,
		Color: func(loc location.Location, _ bool) Color {
			e, ok := location.Anchor(loc)
			if !ok {
				return p.Value
			}
			return ElementColor(e.Atom().Element)
		},
	}
}

func instanceIndexColor(ctx Context, p ColorProps) ColorTheme {
	n := 0
	if ctx.Structure != nil {
		n = len(ctx.Structure.Units)
	}
	return ColorTheme{
		Granularity: render.ColorGroupInstance,
		Color: func(loc location.Location, _ bool) Color {
			e, ok := location.Anchor(loc)
			if !ok || ctx.Structure == nil {
				return p.Value
			}
			i, ok := ctx.Structure.UnitIndexOf(e.Unit.ID)
			if !ok {
				return p.Value
			}
			return p.Scale.Index(i, n)
		},
	}
}

// saccharideColors are the symbol nomenclature for glycans colors.
var saccharideColors = map[structure.SaccharideColor]Color{
	structure.ColorWhite:     0xffffff,
	structure.ColorBlue:      0x0090bc,
	structure.ColorGreen:     0x00a651,
	structure.ColorYellow:    0xffd400,
	structure.ColorOrange:    0xf47920,
	structure.ColorPink:      0xf69ea1,
	structure.ColorPurple:    0xa54399,
	structure.ColorLightBlue: 0x8fcce9,
	structure.ColorBrown:     0xa17a4d,
	structure.ColorRed:       0xed1c24,
}

// SaccharideColor returns the symbol color of a saccharide color class.
func SaccharideColor(c structure.SaccharideColor) Color {
	return saccharideColors[c]
}

// carbohydrateSymbolColor colors carbohydrate anomeric carbons by their
// symbol color; secondary halves of two-part symbols are white.
func carbohydrateSymbolColor(ctx Context, p ColorProps) ColorTheme {
	return ColorTheme{
		Granularity: render.ColorGroup,
		Color: func(loc location.Location, isSecondary bool) Color {
			if isSecondary {
				return saccharideColors[structure.ColorWhite]
			}
			e, ok := loc.(location.Element)
			if !ok || ctx.Structure == nil {
				return p.Value
			}
			i, ok := ctx.Structure.CarbohydrateIndex(e.Unit, e.Element)
			if !ok {
				return p.Value
			}
			return SaccharideColor(ctx.Structure.Carbohydrates[i].Saccharide.Color)
		},
	}
}

// ---------------------------------------------------------------------------
// Size themes
// ---------------------------------------------------------------------------

func uniformSize(_ Context, p SizeProps) SizeTheme {
	return SizeTheme{Size: func(location.Location) float32 { return p.Value * p.Factor }}
}

// physicalSize uses van der Waals radii.
func physicalSize(_ Context, p SizeProps) SizeTheme {
	return SizeTheme{Size: func(loc location.Location) float32 {
		e, ok := location.Anchor(loc)
		if !ok {
			return p.Value * p.Factor
		}
		return structure.Element(e.Atom().Element).VdwRadius * p.Factor
	}}
}
