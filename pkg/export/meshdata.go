package export

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/render"
)

// Marker tints applied on top of theme colors.
var (
	HighlightColor = colorful.Color{R: 1, G: 0, B: 1}
	SelectColor    = colorful.Color{R: 0.2, G: 1, B: 0.2}
)

const tintAmount = 0.5

// MeshData is a render object flattened into structure coordinates with
// per-vertex colors, ready for a frontend that knows nothing about
// instances or groups.
type MeshData struct {
	ID       int       `json:"id" codec:"id"`
	Label    string    `json:"label" codec:"label"`
	Vertices []float32 `json:"vertices" codec:"vertices"`
	Normals  []float32 `json:"normals" codec:"normals"`
	Indices  []uint32  `json:"indices" codec:"indices"`
	Colors   []float32 `json:"colors" codec:"colors"` // rgb in [0, 1] per vertex
	// Groups holds the flat index instance*GroupCount+group of every
	// triangle, for picking.
	Groups     []uint32 `json:"groups" codec:"groups"`
	GroupCount int      `json:"groupCount" codec:"groupCount"`
	Alpha      float32  `json:"alpha" codec:"alpha"`
	Visible    bool     `json:"visible" codec:"visible"`
}

// PickingID turns the flat index of a triangle back into a picking id.
func (d MeshData) PickingID(triangle int) render.PickingID {
	if triangle < 0 || triangle >= len(d.Groups) || d.GroupCount <= 0 {
		return render.PickingID{ObjectID: d.ID, InstanceID: render.NoID, GroupID: render.NoID}
	}
	flat := int(d.Groups[triangle])
	return render.PickingID{ObjectID: d.ID, InstanceID: flat / d.GroupCount, GroupID: flat % d.GroupCount}
}

// NewMeshData flattens obj and colors every vertex by the theme color and
// marker state of its (instance, group).
func NewMeshData(obj *render.Object) MeshData {
	flat := Flatten(obj)
	d := MeshData{
		ID:       obj.ID,
		Label:    obj.Label,
		Vertices: flat.Vertices,
		Normals:  flat.Normals,
		Indices:  flat.Indices,
		Colors:     make([]float32, 3*flat.VertexCount),
		Groups:     flat.Groups,
		GroupCount: obj.GroupCount,
		Alpha:      obj.Alpha,
		Visible:    obj.Visible,
	}
	if d.Vertices == nil {
		d.Vertices, d.Normals, d.Indices, d.Groups = []float32{}, []float32{}, []uint32{}, []uint32{}
	}
	for t := 0; t < flat.TriangleCount; t++ {
		c := FlatColor(obj, int(flat.Groups[t]))
		for _, v := range flat.Triangle(t) {
			copy(d.Colors[3*v:3*v+3], []float32{float32(c.R), float32(c.G), float32(c.B)})
		}
	}
	return d
}

// FlatColor returns the displayed color of the flat (instance, group)
// index i: the theme color tinted by its marker flags.
func FlatColor(obj *render.Object, i int) colorful.Color {
	groups := max(obj.GroupCount, 1)
	rgb := obj.Colors.At(i%groups, i/groups, obj.GroupCount)
	c := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	if i < len(obj.Markers) {
		m := obj.Markers[i]
		if m&marker.Selected != 0 {
			c = c.BlendRgb(SelectColor, tintAmount)
		}
		if m&marker.Highlighted != 0 {
			c = c.BlendRgb(HighlightColor, tintAmount)
		}
	}
	return c.Clamped()
}

// MeshDataList converts objects in order.
func MeshDataList(objs []*render.Object) []MeshData {
	out := make([]MeshData, len(objs))
	for i, obj := range objs {
		out[i] = NewMeshData(obj)
	}
	return out
}
