// Package export turns published render objects into files and wire
// formats: STL, SVG, msgpack and the JSON mesh form used by the hosts.
package export

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/render"
)

// Flatten applies every instance transform of obj and returns one mesh in
// structure coordinates. The group of each triangle becomes its flat index
// instance*GroupCount + group.
func Flatten(obj *render.Object) *mesh.Mesh {
	src := obj.Mesh
	if src.IsEmpty() || obj.InstanceCount == 0 {
		return mesh.Empty()
	}
	n := obj.InstanceCount
	out := &mesh.Mesh{
		VertexCount:   n * src.VertexCount,
		TriangleCount: n * src.TriangleCount,
		Vertices:      make([]float32, 0, n*len(src.Vertices)),
		Normals:       make([]float32, 0, n*len(src.Normals)),
		Indices:       make([]uint32, 0, n*len(src.Indices)),
		Groups:        make([]uint32, 0, n*len(src.Groups)),
		IDs:           make([]uint32, 0, n*len(src.IDs)),
	}
	for instance := 0; instance < n; instance++ {
		t := obj.Transform(instance)
		normal := normalMatrix(t)
		for i := 0; i < src.VertexCount; i++ {
			p := mgl32.TransformCoordinate(src.Position(i), t)
			nv := normal.Mul3x1(mgl32.Vec3{src.Normals[3*i], src.Normals[3*i+1], src.Normals[3*i+2]})
			if nv.LenSqr() > 0 {
				nv = nv.Normalize()
			}
			out.Vertices = append(out.Vertices, p[:]...)
			out.Normals = append(out.Normals, nv[:]...)
		}
		offset := uint32(instance * src.VertexCount)
		for _, idx := range src.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
		base := uint32(instance * obj.GroupCount)
		for _, g := range src.Groups {
			out.Groups = append(out.Groups, base+g)
		}
		out.IDs = append(out.IDs, src.IDs...)
	}
	return out
}

// normalMatrix is the inverse transpose of the rotation part of t.
func normalMatrix(t mgl32.Mat4) mgl32.Mat3 {
	m := t.Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}

// Merge concatenates meshes. Groups and ids are kept as they are.
func Merge(meshes ...*mesh.Mesh) *mesh.Mesh {
	out := &mesh.Mesh{}
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		offset := uint32(out.VertexCount)
		out.Vertices = append(out.Vertices, m.Vertices...)
		out.Normals = append(out.Normals, m.Normals...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
		out.Groups = append(out.Groups, m.Groups...)
		out.IDs = append(out.IDs, m.IDs...)
		out.VertexCount += m.VertexCount
		out.TriangleCount += m.TriangleCount
	}
	return out
}
