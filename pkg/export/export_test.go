package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/render"
)

// twoTriangles has one triangle per group, instanced twice 10 apart in X.
func twoTriangles(t *testing.T) *render.Object {
	t.Helper()
	b := mesh.NewBuilder(0, 0, nil)
	b.SetGroup(0)
	b.AddTriangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{})
	b.SetGroup(1)
	b.AddTriangle(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 1}, mgl32.Vec3{0, 1, 1}, mgl32.Vec3{})
	m, err := b.GetMesh()
	require.NoError(t, err)
	return &render.Object{
		ID:            render.NextObjectID(),
		Label:         "triangles",
		Mesh:          m,
		Transforms:    render.Transforms(mgl32.Ident4(), mgl32.Translate3D(10, 0, 0)),
		Colors:        render.ColorData{Type: render.ColorGroup, RGB: []uint8{255, 0, 0, 0, 0, 255}},
		Markers:       make([]byte, 4),
		InstanceCount: 2,
		GroupCount:    2,
		Values:        render.Values{Alpha: 1, Visible: true},
	}
}

func TestFlattenAppliesInstances(t *testing.T) {
	obj := twoTriangles(t)
	flat := Flatten(obj)
	require.NoError(t, flat.Validate())

	assert.Equal(t, 2*obj.VertexCount(), flat.VertexCount)
	assert.Equal(t, 4, flat.TriangleCount)
	assert.Equal(t, []uint32{0, 1, 2, 3}, flat.Groups)
	for i := obj.VertexCount(); i < flat.VertexCount; i++ {
		assert.InDelta(t, obj.Mesh.Position(i - obj.VertexCount())[0]+10, flat.Position(i)[0], 1e-5)
	}
	for i := 0; i < flat.VertexCount; i++ {
		n := mgl32.Vec3{flat.Normals[3*i], flat.Normals[3*i+1], flat.Normals[3*i+2]}
		assert.InDelta(t, 1, n.Len(), 1e-5)
	}

	obj.InstanceCount = 0
	assert.True(t, Flatten(obj).IsEmpty())
}

func TestMergeOffsetsIndices(t *testing.T) {
	a := Flatten(twoTriangles(t))
	merged := Merge(a, mesh.Empty(), a)
	require.NoError(t, merged.Validate())
	assert.Equal(t, 2*a.VertexCount, merged.VertexCount)
	assert.Equal(t, 2*a.TriangleCount, merged.TriangleCount)
	assert.Equal(t, a.Indices[0]+uint32(a.VertexCount), merged.Indices[len(a.Indices)])
}

func TestFlatColorTintsMarkers(t *testing.T) {
	obj := twoTriangles(t)
	red := FlatColor(obj, 2)
	assert.InDelta(t, 1, red.R, 1e-9)
	assert.InDelta(t, 0, red.B, 1e-9)

	obj.Markers[2] = marker.Selected
	selected := FlatColor(obj, 2)
	assert.Greater(t, selected.G, red.G)

	obj.Markers[2] = marker.Selected | marker.Highlighted
	assert.NotEqual(t, selected, FlatColor(obj, 2))
}

func TestNewMeshData(t *testing.T) {
	obj := twoTriangles(t)
	obj.Markers[1] = marker.Highlighted
	d := NewMeshData(obj)

	assert.Equal(t, obj.ID, d.ID)
	assert.Equal(t, "triangles", d.Label)
	assert.Len(t, d.Vertices, 3*2*obj.VertexCount())
	assert.Len(t, d.Colors, len(d.Vertices))
	assert.Len(t, d.Indices, 12)

	// vertex colors follow the group of their triangle
	v0 := d.Indices[0]
	assert.Equal(t, []float32{1, 0, 0}, d.Colors[3*v0:3*v0+3])
	v1 := d.Indices[3]
	assert.NotEqual(t, []float32{0, 0, 1}, d.Colors[3*v1:3*v1+3])

	assert.Equal(t, render.PickingID{ObjectID: obj.ID, InstanceID: 1, GroupID: 1}, d.PickingID(3))
	assert.Equal(t, render.NoID, d.PickingID(4).GroupID)

	empty := NewMeshData(&render.Object{Mesh: mesh.Empty()})
	assert.NotNil(t, empty.Vertices)
	assert.Empty(t, empty.Vertices)
}

func TestWriteSTL(t *testing.T) {
	obj := twoTriangles(t)
	hidden := twoTriangles(t)
	hidden.Visible = false
	path := filepath.Join(t.TempDir(), "out.stl")
	require.NoError(t, WriteSTL(path, []*render.Object{obj, hidden}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(84+50*4), info.Size())

	assert.Error(t, WriteSTL(path, []*render.Object{hidden}))
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, []*render.Object{twoTriangles(t)}, DefaultSVGOptions))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 4, strings.Count(out, "<polygon"))
	assert.Contains(t, out, "</svg>")

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, nil, SVGOptions{Width: 10, Height: 10}))
	assert.NotContains(t, buf.String(), "<polygon")
}

func TestMsgpackRoundTrip(t *testing.T) {
	obj := twoTriangles(t)
	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, []*render.Object{obj}))

	got, err := ReadMsgpack(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, NewMeshData(obj), got[0])

	_, err = ReadMsgpack(strings.NewReader(""))
	assert.Error(t, err)
}
