package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/primitive"
)

var (
	// ErrFinalized is recorded when geometry is added after GetMesh.
	ErrFinalized = errors.New("mesh: builder already finalized")
	// ErrTooManyVertices is recorded when the vertex count would leave the
	// uint32 index space.
	ErrTooManyVertices = errors.New("mesh: vertex count exceeds index range")
)

// Builder is an append-only mesh accumulator. Buffers grow geometrically,
// by at least one chunk at a time. The first error encountered is sticky:
// later adds are ignored and GetMesh reports it.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	vertices []float32
	normals  []float32
	indices  []uint32
	groups   []uint32
	ids      []uint32

	vertexChunk   int
	triangleChunk int

	group uint32
	id    uint32

	err  error
	done bool
}

// NewBuilder returns a builder that grows its vertex buffers by at least
// vertexChunk vertices and its triangle buffers by at least triangleChunk
// triangles. Non-positive chunk sizes are allowed; the first add then grows
// to exactly what it needs. When reuse is non-nil its buffers are recycled,
// so reuse must not be referenced by anything else afterwards.
func NewBuilder(vertexChunk, triangleChunk int, reuse *Mesh) *Builder {
	b := &Builder{
		vertexChunk:   max(vertexChunk, 0),
		triangleChunk: max(triangleChunk, 0),
	}
	b.Reset(reuse)
	return b
}

// Reset clears the builder so it can be used again, optionally recycling
// the buffers of reuse.
func (b *Builder) Reset(reuse *Mesh) {
	b.group, b.id = 0, 0
	b.err, b.done = nil, false
	if reuse != nil {
		b.vertices = reuse.Vertices[:0]
		b.normals = reuse.Normals[:0]
		b.indices = reuse.Indices[:0]
		b.groups = reuse.Groups[:0]
		b.ids = reuse.IDs[:0]
		return
	}
	b.vertices = make([]float32, 0, 3*b.vertexChunk)
	b.normals = make([]float32, 0, 3*b.vertexChunk)
	b.indices = make([]uint32, 0, 3*b.triangleChunk)
	b.groups = make([]uint32, 0, b.triangleChunk)
	b.ids = make([]uint32, 0, b.triangleChunk)
}

// SetGroup sets the group id recorded for every triangle added until the
// next call.
func (b *Builder) SetGroup(group int) {
	b.group = uint32(group)
}

// SetID sets the per-primitive id recorded alongside the group. It is
// independent of the group and defaults to 0.
func (b *Builder) SetID(id int) {
	b.id = uint32(id)
}

// VertexCount returns the number of vertices added so far.
func (b *Builder) VertexCount() int {
	return len(b.vertices) / 3
}

// TriangleCount returns the number of triangles added so far.
func (b *Builder) TriangleCount() int {
	return len(b.groups)
}

// Err returns the sticky error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Add appends a copy of p transformed by t. Normals go through the inverse
// transpose of t's upper 3x3 so non-uniform scales stay correct.
func (b *Builder) Add(t mgl32.Mat4, p *primitive.Primitive) {
	if !b.reserve(p.VertexCount(), p.TriangleCount()) {
		return
	}
	normalMatrix := t.Mat3().Inv().Transpose()
	offset := uint32(b.VertexCount())
	for i, v := range p.Vertices {
		w := t.Mul4x1(v.Vec4(1))
		n := safeNormalize(normalMatrix.Mul3x1(p.Normals[i]))
		b.vertices = append(b.vertices, w[0], w[1], w[2])
		b.normals = append(b.normals, n[0], n[1], n[2])
	}
	for _, tri := range p.Indices {
		b.indices = append(b.indices, tri[0]+offset, tri[1]+offset, tri[2]+offset)
		b.groups = append(b.groups, b.group)
		b.ids = append(b.ids, b.id)
	}
}

// AddSphere appends an icosahedron-based sphere. Detail 0 gives 20 faces and
// every further level multiplies the face count by four.
func (b *Builder) AddSphere(center mgl32.Vec3, radius float32, detail int) {
	t := mgl32.Translate3D(center[0], center[1], center[2]).Mul4(mgl32.Scale3D(radius, radius, radius))
	b.Add(t, primitive.Icosahedron(detail))
}

// AddCylinder appends a cylinder of the given radius from start to end.
// A zero-length cylinder is accepted and yields degenerate triangles.
func (b *Builder) AddCylinder(start, end mgl32.Vec3, radius float32, props primitive.CylinderProps) {
	axis := end.Sub(start)
	dir := safeNormalize(axis)
	u := orthogonal(dir)
	w := u.Cross(dir)
	mid := start.Add(end).Mul(0.5)
	t := mgl32.Mat4FromCols(
		u.Mul(radius).Vec4(0),
		axis.Vec4(0),
		w.Mul(radius).Vec4(0),
		mid.Vec4(1),
	)
	b.Add(t, primitive.Cylinder(props))
}

// AddTriangle appends a single triangle with three fresh vertices sharing
// normal n. A zero n is replaced by the face normal.
func (b *Builder) AddTriangle(p0, p1, p2, n mgl32.Vec3) {
	if !b.reserve(3, 1) {
		return
	}
	if n.Len() == 0 {
		n = safeNormalize(p1.Sub(p0).Cross(p2.Sub(p0)))
	}
	offset := uint32(b.VertexCount())
	for _, p := range [3]mgl32.Vec3{p0, p1, p2} {
		b.vertices = append(b.vertices, p[0], p[1], p[2])
		b.normals = append(b.normals, n[0], n[1], n[2])
	}
	b.indices = append(b.indices, offset, offset+1, offset+2)
	b.groups = append(b.groups, b.group)
	b.ids = append(b.ids, b.id)
}

// GetMesh finalizes the builder and returns the mesh. The builder must be
// Reset before it accepts geometry again.
func (b *Builder) GetMesh() (*Mesh, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.done = true
	nv, nt := len(b.vertices), len(b.groups)
	return &Mesh{
		VertexCount:   nv / 3,
		TriangleCount: nt,
		Vertices:      b.vertices[:nv:nv],
		Normals:       b.normals[:nv:nv],
		Indices:       b.indices[: 3*nt : 3*nt],
		Groups:        b.groups[:nt:nt],
		IDs:           b.ids[:nt:nt],
	}, nil
}

// reserve makes room for the given number of vertices and triangles. It
// returns false if the builder cannot accept more geometry.
func (b *Builder) reserve(vertices, triangles int) bool {
	if b.err != nil {
		return false
	}
	if b.done {
		b.err = ErrFinalized
		return false
	}
	if uint64(b.VertexCount())+uint64(vertices) > math.MaxUint32 {
		b.err = errors.Wrapf(ErrTooManyVertices, "adding %d vertices to %d", vertices, b.VertexCount())
		return false
	}
	b.vertices = grow(b.vertices, 3*vertices, 3*b.vertexChunk)
	b.normals = grow(b.normals, 3*vertices, 3*b.vertexChunk)
	b.indices = grow(b.indices, 3*triangles, 3*b.triangleChunk)
	b.groups = grow(b.groups, triangles, b.triangleChunk)
	b.ids = grow(b.ids, triangles, b.triangleChunk)
	return true
}

// grow ensures s has room for n more elements, doubling the capacity and
// growing by at least one chunk.
func grow[T any](s []T, n, chunk int) []T {
	need := len(s) + n
	if need <= cap(s) {
		return s
	}
	next := make([]T, len(s), max(need, 2*cap(s), cap(s)+chunk))
	copy(next, s)
	return next
}

// orthogonal returns a unit vector perpendicular to the unit vector v.
func orthogonal(v mgl32.Vec3) mgl32.Vec3 {
	ref := mgl32.Vec3{1, 0, 0}
	if v[0] > 0.9 || v[0] < -0.9 {
		ref = mgl32.Vec3{0, 1, 0}
	}
	if p := safeNormalize(v.Cross(ref)); p.Len() > 0 {
		return p
	}
	return ref
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
