package kernel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleAccessors(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
	}
	if got := m.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", got)
	}
	if got := m.Triangle(1); got != [3]uint32{2, 3, 0} {
		t.Errorf("Triangle(1) = %v, want [2 3 0]", got)
	}
	if got := m.Vertex(2); got != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("Vertex(2) = %v, want [1 1 0]", got)
	}
	if got := m.Normal(3); got != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Normal(3) = %v, want [0 0 1]", got)
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. Spheres are boxed, everything else is trivial.
type stubKernel struct{}

func (k *stubKernel) Spheres(spheres []Sphere) (Solid, error) {
	if len(spheres) == 0 {
		return nil, ErrEmptySolid
	}
	s := &stubSolid{}
	for i, sp := range spheres {
		for a := 0; a < 3; a++ {
			lo := float64(sp.Center[a] - sp.Radius)
			hi := float64(sp.Center[a] + sp.Radius)
			if i == 0 || lo < s.minBB[a] {
				s.minBB[a] = lo
			}
			if i == 0 || hi > s.maxBB[a] {
				s.maxBB[a] = hi
			}
		}
	}
	return s, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }
func (k *stubKernel) Offset(s Solid, _ float64) Solid {
	return s
}

func (k *stubKernel) ToMesh(_ Solid, _ float64) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelSpheresBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Spheres([]Sphere{
		{Center: mgl32.Vec3{0, 0, 0}, Radius: 1},
		{Center: mgl32.Vec3{10, 0, 0}, Radius: 2},
	})
	if err != nil {
		t.Fatalf("Spheres() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{-1, -2, -2} {
		t.Errorf("min = %v, want [-1 -2 -2]", min)
	}
	if max != [3]float64{12, 2, 2} {
		t.Errorf("max = %v, want [12 2 2]", max)
	}
	if _, err := k.Spheres(nil); err != ErrEmptySolid {
		t.Errorf("Spheres(nil) error = %v, want ErrEmptySolid", err)
	}
}
