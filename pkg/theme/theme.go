// Package theme maps locations to colors and sizes. Themes are pure: they
// are chosen by name from a closed set and may be called any number of
// times in any order.
package theme

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/names"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
)

// ErrUnknownTheme is returned for theme names outside the known set.
var ErrUnknownTheme = errors.New("theme: unknown theme")

// Context is the data themes may depend on.
type Context struct {
	Structure *structure.Structure
}

// ColorFunc returns the color of a location. isSecondary is set for the
// second group of two-group entities.
type ColorFunc func(loc location.Location, isSecondary bool) Color

// SizeFunc returns the size of a location in Å.
type SizeFunc func(loc location.Location) float32

// ColorTheme is a named color function.
type ColorTheme struct {
	Name        string
	Granularity render.ColorType
	Color       ColorFunc
}

// SizeTheme is a named size function.
type SizeTheme struct {
	Name string
	Size SizeFunc
}

// Theme bundles the color and size theme of a visual.
type Theme struct {
	Color ColorTheme
	Size  SizeTheme
}

// ColorProps parameterize color themes.
type ColorProps struct {
	Value Color // uniform color and fallback for unthemed locations
	Scale Scale // used by index based themes; DefaultScale when empty
}

// SizeProps parameterize size themes.
type SizeProps struct {
	Value  float32 // uniform size and fallback
	Factor float32 // multiplies the physical size
}

// DefaultColor is used for uniform coloring and unknown locations.
const DefaultColor Color = 0x888888

type colorFactory func(ctx Context, p ColorProps) ColorTheme

type sizeFactory func(ctx Context, p SizeProps) SizeTheme

var colorThemes = map[string]colorFactory{
	"uniform":             uniformColor,
	"element-index":       elementIndexColor,
	"chain-id":            chainIDColor,
	"element-symbol":      elementSymbolColor,
	"instance-index":      instanceIndexColor,
	"carbohydrate-symbol": carbohydrateSymbolColor,
}

var sizeThemes = map[string]sizeFactory{
	"uniform":  uniformSize,
	"physical": physicalSize,
}

// ColorThemeNames lists the known color themes, sorted.
func ColorThemeNames() []string { return sorted(lo.Keys(colorThemes)) }

// SizeThemeNames lists the known size themes, sorted.
func SizeThemeNames() []string { return sorted(lo.Keys(sizeThemes)) }

func sorted(s []string) []string {
	sort.Strings(s)
	return s
}

// ValidateColorTheme reports ErrUnknownTheme for unknown color theme
// names.
func ValidateColorTheme(name string) error {
	if _, ok := colorThemes[name]; !ok {
		return names.Unknown(ErrUnknownTheme, name, ColorThemeNames())
	}
	return nil
}

// ValidateSizeTheme reports ErrUnknownTheme for unknown size theme names.
func ValidateSizeTheme(name string) error {
	if _, ok := sizeThemes[name]; !ok {
		return names.Unknown(ErrUnknownTheme, name, SizeThemeNames())
	}
	return nil
}

// NewColorTheme returns the color theme with the given name.
func NewColorTheme(name string, ctx Context, p ColorProps) (ColorTheme, error) {
	f, ok := colorThemes[name]
	if !ok {
		return ColorTheme{}, names.Unknown(ErrUnknownTheme, name, ColorThemeNames())
	}
	if len(p.Scale.stops) == 0 {
		p.Scale = DefaultScale
	}
	t := f(ctx, p)
	t.Name = name
	return t, nil
}

// NewSizeTheme returns the size theme with the given name.
func NewSizeTheme(name string, ctx Context, p SizeProps) (SizeTheme, error) {
	f, ok := sizeThemes[name]
	if !ok {
		return SizeTheme{}, names.Unknown(ErrUnknownTheme, name, SizeThemeNames())
	}
	if p.Factor == 0 {
		p.Factor = 1
	}
	t := f(ctx, p)
	t.Name = name
	return t, nil
}

// FillColors evaluates the color theme over the iterator and returns the
// color buffer in the layout its granularity asks for.
func FillColors(it *location.Iterator, t ColorTheme) render.ColorData {
	switch t.Granularity {
	case render.ColorGroup:
		rgb := make([]uint8, 0, 3*it.GroupCount)
		for g := 0; g < it.GroupCount; g++ {
			c := t.Color(it.Location(g, 0), it.IsSecondary(g, 0)).RGB()
			rgb = append(rgb, c[:]...)
		}
		return render.ColorData{Type: render.ColorGroup, RGB: rgb}
	case render.ColorGroupInstance:
		rgb := make([]uint8, 0, 3*it.Count())
		_ = it.ForEach(func(v location.Value) error {
			c := t.Color(v.Location, v.IsSecondary).RGB()
			rgb = append(rgb, c[:]...)
			return nil
		})
		return render.ColorData{Type: render.ColorGroupInstance, RGB: rgb}
	default:
		c := t.Color(location.Null{}, false).RGB()
		return render.ColorData{Type: render.ColorUniform, RGB: c[:]}
	}
}
