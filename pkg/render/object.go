// Package render describes what the pipeline hands to a renderer: immutable
// render objects with their buffers, and the picking ids decoded from the
// picking pass.
package render

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arose/molstar/pkg/mesh"
)

// ColorType tells how a color buffer is indexed.
type ColorType int

const (
	ColorUniform       ColorType = iota // one color
	ColorGroup                          // one color per group
	ColorGroupInstance                  // one color per (instance, group)
)

func (t ColorType) String() string {
	switch t {
	case ColorGroup:
		return "group"
	case ColorGroupInstance:
		return "groupInstance"
	default:
		return "uniform"
	}
}

// ColorData is an RGB byte buffer, three bytes per entry.
type ColorData struct {
	Type ColorType
	RGB  []uint8
}

// Len returns the number of colors.
func (c ColorData) Len() int {
	return len(c.RGB) / 3
}

// At returns the color used for a (group, instance) pair.
func (c ColorData) At(group, instance, groupCount int) [3]uint8 {
	i := 0
	switch c.Type {
	case ColorGroup:
		i = group
	case ColorGroupInstance:
		i = instance*groupCount + group
	}
	if 3*i+2 >= len(c.RGB) {
		return [3]uint8{}
	}
	return [3]uint8{c.RGB[3*i], c.RGB[3*i+1], c.RGB[3*i+2]}
}

var lastObjectID atomic.Int32

// NextObjectID returns a process-wide unique render object id. Ids start
// at 1; 0 never identifies an object.
func NextObjectID() int {
	return int(lastObjectID.Add(1))
}

// Values are the non-geometric render values of an object.
type Values struct {
	Alpha   float32
	Visible bool
}

// Object is the snapshot handed to the renderer after a successful build
// or update. Everything except Markers is immutable; Markers is the live
// highlight and selection buffer owned by the publishing visual.
type Object struct {
	ID    int
	Label string

	Mesh       *mesh.Mesh
	Transforms []float32 // 16 floats per instance, column major
	Colors     ColorData
	Markers    []byte // one entry per (instance, group)

	InstanceCount int
	GroupCount    int
	Values
}

// VertexCount returns the number of mesh vertices.
func (o *Object) VertexCount() int {
	if o.Mesh == nil {
		return 0
	}
	return o.Mesh.VertexCount
}

// TriangleCount returns the number of mesh triangles.
func (o *Object) TriangleCount() int {
	if o.Mesh == nil {
		return 0
	}
	return o.Mesh.TriangleCount
}

// Transform returns the transform of an instance.
func (o *Object) Transform(instance int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], o.Transforms[16*instance:16*instance+16])
	return m
}

// Transforms flattens one matrix per instance.
func Transforms(ms ...mgl32.Mat4) []float32 {
	out := make([]float32, 0, 16*len(ms))
	for _, m := range ms {
		out = append(out, m[:]...)
	}
	return out
}

// IdentityTransforms returns a single identity transform.
func IdentityTransforms() []float32 {
	return Transforms(mgl32.Ident4())
}
