package theme

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Color is a 0xRRGGBB color.
type Color uint32

// RGB returns the color as three bytes.
func (c Color) RGB() [3]uint8 {
	return [3]uint8{uint8(c >> 16), uint8(c >> 8), uint8(c)}
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func (c Color) colorful() colorful.Color {
	rgb := c.RGB()
	return colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseColor parses #rrggbb or #rgb.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, errors.Wrapf(err, "theme: color %q", s)
	}
	return fromColorful(c), nil
}

// Scale interpolates between color stops in Lab space.
type Scale struct {
	stops []colorful.Color
}

// NewScale returns a scale through the given stops. A scale without stops
// is black.
func NewScale(stops ...Color) Scale {
	s := Scale{stops: make([]colorful.Color, len(stops))}
	for i, c := range stops {
		s.stops[i] = c.colorful()
	}
	return s
}

// At returns the color at t in [0, 1]; t is clamped.
func (s Scale) At(t float64) Color {
	switch len(s.stops) {
	case 0:
		return 0
	case 1:
		return fromColorful(s.stops[0])
	}
	t = min(max(t, 0), 1)
	pos := t * float64(len(s.stops)-1)
	i := min(int(pos), len(s.stops)-2)
	return fromColorful(s.stops[i].BlendLab(s.stops[i+1], pos-float64(i)))
}

// Index returns the color of item i out of n, spreading items evenly over
// the scale.
func (s Scale) Index(i, n int) Color {
	if n <= 1 {
		return s.At(0)
	}
	return s.At(float64(i) / float64(n-1))
}

// DefaultScale runs from red through pale yellow to blue.
var DefaultScale = NewScale(0xd7191c, 0xfdae61, 0xffffbf, 0xabd9e9, 0x2c7bb6)
