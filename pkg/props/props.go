// Package props holds the immutable property bag of visuals and
// representations, its defaults, and the override type merged on top.
package props

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/primitive"
	"github.com/arose/molstar/pkg/theme"
)

// ErrInvalid is returned for property values outside their valid range.
var ErrInvalid = errors.New("props: invalid")

// Quality selects tessellation detail.
type Quality string

const (
	QualityAuto    Quality = "auto"
	QualityHighest Quality = "highest"
	QualityHigh    Quality = "high"
	QualityMedium  Quality = "medium"
	QualityLow     Quality = "low"
	QualityLowest  Quality = "lowest"
	QualityCustom  Quality = "custom" // use Detail and RadialSegments as given
)

// Props are the properties of a visual. Values are immutable; derive new
// ones with Merge.
type Props struct {
	Alpha   float32 `json:"alpha"`
	Visible bool    `json:"visible"`

	ColorTheme string  `json:"colorTheme"`
	ColorValue string  `json:"colorValue"` // uniform color, #rrggbb
	SizeTheme  string  `json:"sizeTheme"`
	SizeValue  float32 `json:"sizeValue"`  // uniform size in Å
	SizeFactor float32 `json:"sizeFactor"` // scales theme sizes

	Quality        Quality `json:"quality"`
	Detail         int     `json:"detail"`         // sphere subdivision level
	RadialSegments int     `json:"radialSegments"` // cylinder segments

	LinkRadius        float32 `json:"linkRadius"`        // Å
	ProbeRadius       float32 `json:"probeRadius"`       // Å, molecular surface
	SurfaceResolution float32 `json:"surfaceResolution"` // Å per marching cubes cell

	Concurrent bool `json:"concurrent"` // prepare sub-representations concurrently
}

// Default returns the default properties.
func Default() Props {
	return Props{
		Alpha:             1,
		Visible:           true,
		ColorTheme:        "element-symbol",
		ColorValue:        theme.DefaultColor.Hex(),
		SizeTheme:         "physical",
		SizeValue:         1,
		SizeFactor:        1,
		Quality:           QualityAuto,
		Detail:            1,
		RadialSegments:    12,
		LinkRadius:        0.25,
		ProbeRadius:       1.4,
		SurfaceResolution: 0.8,
	}
}

// Override holds optional replacements for Props fields. Nil fields keep
// the base value.
type Override struct {
	Alpha   *float32 `json:"alpha,omitempty" toml:"alpha,omitempty" yaml:"alpha,omitempty"`
	Visible *bool    `json:"visible,omitempty" toml:"visible,omitempty" yaml:"visible,omitempty"`

	ColorTheme *string  `json:"colorTheme,omitempty" toml:"color-theme,omitempty" yaml:"color-theme,omitempty"`
	ColorValue *string  `json:"colorValue,omitempty" toml:"color-value,omitempty" yaml:"color-value,omitempty"`
	SizeTheme  *string  `json:"sizeTheme,omitempty" toml:"size-theme,omitempty" yaml:"size-theme,omitempty"`
	SizeValue  *float32 `json:"sizeValue,omitempty" toml:"size-value,omitempty" yaml:"size-value,omitempty"`
	SizeFactor *float32 `json:"sizeFactor,omitempty" toml:"size-factor,omitempty" yaml:"size-factor,omitempty"`

	Quality        *Quality `json:"quality,omitempty" toml:"quality,omitempty" yaml:"quality,omitempty"`
	Detail         *int     `json:"detail,omitempty" toml:"detail,omitempty" yaml:"detail,omitempty"`
	RadialSegments *int     `json:"radialSegments,omitempty" toml:"radial-segments,omitempty" yaml:"radial-segments,omitempty"`

	LinkRadius        *float32 `json:"linkRadius,omitempty" toml:"link-radius,omitempty" yaml:"link-radius,omitempty"`
	ProbeRadius       *float32 `json:"probeRadius,omitempty" toml:"probe-radius,omitempty" yaml:"probe-radius,omitempty"`
	SurfaceResolution *float32 `json:"surfaceResolution,omitempty" toml:"surface-resolution,omitempty" yaml:"surface-resolution,omitempty"`

	Concurrent *bool `json:"concurrent,omitempty" toml:"concurrent,omitempty" yaml:"concurrent,omitempty"`
}

// Merge returns p with every non-nil field of o applied.
func (p Props) Merge(o Override) Props {
	return Props{
		Alpha:             lo.FromPtrOr(o.Alpha, p.Alpha),
		Visible:           lo.FromPtrOr(o.Visible, p.Visible),
		ColorTheme:        lo.FromPtrOr(o.ColorTheme, p.ColorTheme),
		ColorValue:        lo.FromPtrOr(o.ColorValue, p.ColorValue),
		SizeTheme:         lo.FromPtrOr(o.SizeTheme, p.SizeTheme),
		SizeValue:         lo.FromPtrOr(o.SizeValue, p.SizeValue),
		SizeFactor:        lo.FromPtrOr(o.SizeFactor, p.SizeFactor),
		Quality:           lo.FromPtrOr(o.Quality, p.Quality),
		Detail:            lo.FromPtrOr(o.Detail, p.Detail),
		RadialSegments:    lo.FromPtrOr(o.RadialSegments, p.RadialSegments),
		LinkRadius:        lo.FromPtrOr(o.LinkRadius, p.LinkRadius),
		ProbeRadius:       lo.FromPtrOr(o.ProbeRadius, p.ProbeRadius),
		SurfaceResolution: lo.FromPtrOr(o.SurfaceResolution, p.SurfaceResolution),
		Concurrent:        lo.FromPtrOr(o.Concurrent, p.Concurrent),
	}
}

// Then returns an override applying o and then next.
func (o Override) Then(next Override) Override {
	return Override{
		Alpha:             lo.CoalesceOrEmpty(next.Alpha, o.Alpha),
		Visible:           lo.CoalesceOrEmpty(next.Visible, o.Visible),
		ColorTheme:        lo.CoalesceOrEmpty(next.ColorTheme, o.ColorTheme),
		ColorValue:        lo.CoalesceOrEmpty(next.ColorValue, o.ColorValue),
		SizeTheme:         lo.CoalesceOrEmpty(next.SizeTheme, o.SizeTheme),
		SizeValue:         lo.CoalesceOrEmpty(next.SizeValue, o.SizeValue),
		SizeFactor:        lo.CoalesceOrEmpty(next.SizeFactor, o.SizeFactor),
		Quality:           lo.CoalesceOrEmpty(next.Quality, o.Quality),
		Detail:            lo.CoalesceOrEmpty(next.Detail, o.Detail),
		RadialSegments:    lo.CoalesceOrEmpty(next.RadialSegments, o.RadialSegments),
		LinkRadius:        lo.CoalesceOrEmpty(next.LinkRadius, o.LinkRadius),
		ProbeRadius:       lo.CoalesceOrEmpty(next.ProbeRadius, o.ProbeRadius),
		SurfaceResolution: lo.CoalesceOrEmpty(next.SurfaceResolution, o.SurfaceResolution),
		Concurrent:        lo.CoalesceOrEmpty(next.Concurrent, o.Concurrent),
	}
}

var qualities = []Quality{QualityAuto, QualityHighest, QualityHigh, QualityMedium, QualityLow, QualityLowest, QualityCustom}

// Validate checks ranges and theme names. Errors wrap ErrInvalid or
// theme.ErrUnknownTheme.
func (p Props) Validate() error {
	check := func(ok bool, format string, args ...any) error {
		if ok {
			return nil
		}
		return errors.Wrap(ErrInvalid, fmt.Sprintf(format, args...))
	}
	for _, err := range []error{
		check(p.Alpha >= 0 && p.Alpha <= 1, "alpha %v not in [0, 1]", p.Alpha),
		check(p.SizeValue > 0, "size value %v must be positive", p.SizeValue),
		check(p.SizeFactor > 0, "size factor %v must be positive", p.SizeFactor),
		check(lo.Contains(qualities, p.Quality), "quality %q", p.Quality),
		check(p.Detail >= 0 && p.Detail <= primitive.MaxDetail, "detail %d not in [0, %d]", p.Detail, primitive.MaxDetail),
		check(p.RadialSegments >= 3, "radial segments %d below 3", p.RadialSegments),
		check(p.LinkRadius > 0, "link radius %v must be positive", p.LinkRadius),
		check(p.ProbeRadius >= 0, "probe radius %v is negative", p.ProbeRadius),
		check(p.SurfaceResolution > 0, "surface resolution %v must be positive", p.SurfaceResolution),
	} {
		if err != nil {
			return err
		}
	}
	if _, err := theme.ParseColor(p.ColorValue); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if err := theme.ValidateColorTheme(p.ColorTheme); err != nil {
		return err
	}
	return theme.ValidateSizeTheme(p.SizeTheme)
}

// qualitySettings maps a quality to sphere detail and cylinder segments.
var qualitySettings = map[Quality]struct{ detail, radialSegments int }{
	QualityHighest: {3, 36},
	QualityHigh:    {2, 24},
	QualityMedium:  {1, 12},
	QualityLow:     {0, 8},
	QualityLowest:  {0, 4},
}

// AutoQuality picks a quality for a structure with the given number of
// elements.
func AutoQuality(elementCount int) Quality {
	switch {
	case elementCount > 500_000:
		return QualityLowest
	case elementCount > 100_000:
		return QualityLow
	case elementCount > 30_000:
		return QualityMedium
	default:
		return QualityHigh
	}
}

// Resolve replaces Detail and RadialSegments with the values of the
// quality level; auto picks the level from elementCount. Custom quality
// is returned unchanged.
func (p Props) Resolve(elementCount int) Props {
	q := p.Quality
	if q == QualityAuto {
		q = AutoQuality(elementCount)
	}
	if s, ok := qualitySettings[q]; ok {
		p.Detail = s.detail
		p.RadialSegments = s.radialSegments
	}
	return p
}

// ColorProps returns the theme parameters of p. ColorValue must be valid.
func (p Props) ColorProps() theme.ColorProps {
	c, err := theme.ParseColor(p.ColorValue)
	if err != nil {
		c = theme.DefaultColor
	}
	return theme.ColorProps{Value: c}
}

// SizeProps returns the size theme parameters of p.
func (p Props) SizeProps() theme.SizeProps {
	return theme.SizeProps{Value: p.SizeValue, Factor: p.SizeFactor}
}

// Theme builds the color and size themes named by p.
func (p Props) Theme(ctx theme.Context) (theme.Theme, error) {
	c, err := theme.NewColorTheme(p.ColorTheme, ctx, p.ColorProps())
	if err != nil {
		return theme.Theme{}, err
	}
	s, err := theme.NewSizeTheme(p.SizeTheme, ctx, p.SizeProps())
	if err != nil {
		return theme.Theme{}, err
	}
	return theme.Theme{Color: c, Size: s}, nil
}
