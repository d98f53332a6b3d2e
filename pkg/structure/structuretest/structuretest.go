// Package structuretest provides small synthetic structures for tests.
package structuretest

import (
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arose/molstar/pkg/structure"
)

// BondLength is the spacing used between bonded fixture atoms.
const BondLength = 1.45

// Line adds n atoms along step starting at origin, alternating C and N,
// one residue per atom.
func Line(b *structure.ModelBuilder, residue string, n int, origin, step mgl32.Vec3) []int {
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		element := "C"
		if i%2 == 1 {
			element = "N"
		}
		b.Residue(residue, i+1)
		idx[i] = b.Atom(element+"A", element, origin.Add(step.Mul(float32(i))))
	}
	return idx
}

// PyranoseRing adds a planar six-membered ring (O5, C1..C5) in the XY plane
// around center, as residue name/seq.
func PyranoseRing(b *structure.ModelBuilder, name string, seq int, center mgl32.Vec3) []int {
	names := []string{"O5", "C1", "C2", "C3", "C4", "C5"}
	b.Residue(name, seq)
	idx := make([]int, len(names))
	for i, n := range names {
		a := float32(i) * math32.Pi / 3
		p := center.Add(mgl32.Vec3{math32.Cos(a) * BondLength, math32.Sin(a) * BondLength, 0})
		idx[i] = b.Atom(n, n[:1], p)
	}
	return idx
}

// MustNew builds a structure or fails the test.
func MustNew(t testing.TB, m *structure.Model, ops ...structure.Operator) *structure.Structure {
	t.Helper()
	s, err := structure.New(m, ops...)
	if err != nil {
		t.Fatalf("structure.New: %v", err)
	}
	return s
}

// TwoChains returns chain A with four atoms and chain B with three atoms,
// B starting one bond length after A ends so the chains are bonded. With
// copies > 1, extra operators translate the whole model along Z.
func TwoChains(t testing.TB, copies int) *structure.Structure {
	t.Helper()
	b := structure.NewModelBuilder("two-chains")
	step := mgl32.Vec3{BondLength, 0, 0}
	b.Chain("A")
	Line(b, "ALA", 4, mgl32.Vec3{}, step)
	b.Chain("B")
	Line(b, "GLY", 3, mgl32.Vec3{4 * BondLength, 0, 0}, step)
	return MustNew(t, b.Model(), Operators(copies)...)
}

// Operators returns the identity followed by copies-1 translations of 50 Å
// along Z.
func Operators(copies int) []structure.Operator {
	ops := []structure.Operator{structure.IdentityOperator()}
	for i := 1; i < copies; i++ {
		ops = append(ops, structure.TranslationOperator(fmt.Sprintf("copy-%d", i), mgl32.Vec3{0, 0, 50 * float32(i)}))
	}
	return ops
}

// Glycan returns one chain holding one pyranose ring per residue name,
// rings 10 Å apart along X.
func Glycan(t testing.TB, residues ...string) *structure.Structure {
	t.Helper()
	b := structure.NewModelBuilder("glycan")
	b.Chain("G")
	for i, r := range residues {
		PyranoseRing(b, r, i+1, mgl32.Vec3{10 * float32(i), 0, 0})
	}
	return MustNew(t, b.Model())
}
