package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/arose/molstar/pkg/render"
)

// SVGOptions sizes an SVG drawing.
type SVGOptions struct {
	Width, Height int
	Margin        int
	Background    string // CSS color, empty for none
}

// DefaultSVGOptions is an 800x600 drawing on white.
var DefaultSVGOptions = SVGOptions{Width: 800, Height: 600, Margin: 20, Background: "white"}

type svgFace struct {
	p     [3]mgl32.Vec3
	depth float32
	color colorful.Color
}

// WriteSVG draws the visible objects as flat shaded polygons, looking down
// the -Z axis, far faces first.
func WriteSVG(w io.Writer, objs []*render.Object, opts SVGOptions) error {
	var faces []svgFace
	lo, hi := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32}, mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32}
	for _, obj := range objs {
		if !obj.Visible {
			continue
		}
		flat := Flatten(obj)
		for t := 0; t < flat.TriangleCount; t++ {
			tri := flat.Triangle(t)
			var f svgFace
			for j, v := range tri {
				p := flat.Position(int(v))
				f.p[j] = p
				for k := 0; k < 2; k++ {
					lo[k], hi[k] = min(lo[k], p[k]), max(hi[k], p[k])
				}
			}
			f.depth = max(f.p[0][2], f.p[1][2], f.p[2][2])
			n := f.p[1].Sub(f.p[0]).Cross(f.p[2].Sub(f.p[0]))
			shade := 0.3
			if n.LenSqr() > 0 {
				shade += 0.7 * float64(math32.Abs(n.Normalize()[2]))
			}
			c := FlatColor(obj, int(flat.Groups[t]))
			f.color = colorful.Color{R: c.R * shade, G: c.G * shade, B: c.B * shade}
			faces = append(faces, f)
		}
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth < faces[j].depth })

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	if opts.Background != "" {
		canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+opts.Background)
	}
	if len(faces) > 0 {
		scale, ox, oy := fit(lo, hi, opts)
		for _, f := range faces {
			xs, ys := make([]int, 3), make([]int, 3)
			for j, p := range f.p {
				xs[j] = int(math32.Floor(ox + (p[0]-lo[0])*scale + 0.5))
				ys[j] = int(math32.Floor(oy - (p[1]-lo[1])*scale + 0.5))
			}
			canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:none", f.color.Clamped().Hex()))
		}
	}
	canvas.End()
	return nil
}

// fit returns the scale and the canvas position of the lower left corner
// so that the XY bounds lo..hi are centered inside the margins.
func fit(lo, hi mgl32.Vec3, opts SVGOptions) (scale, ox, oy float32) {
	w := float32(opts.Width - 2*opts.Margin)
	h := float32(opts.Height - 2*opts.Margin)
	dx, dy := max(hi[0]-lo[0], 1e-6), max(hi[1]-lo[1], 1e-6)
	scale = min(w/dx, h/dy)
	ox = float32(opts.Margin) + (w-dx*scale)/2
	oy = float32(opts.Height-opts.Margin) - (h-dy*scale)/2
	return scale, ox, oy
}
