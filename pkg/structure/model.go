package structure

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Atom is one atom site of a model.
type Atom struct {
	Name     string     `json:"name"`
	Element  string     `json:"element"`
	Residue  string     `json:"residue"`
	SeqID    int        `json:"seqId"`
	Chain    string     `json:"chain"`
	Position mgl32.Vec3 `json:"position"`
}

// Bond is an explicit bond between two model atoms.
type Bond struct {
	A     int `json:"a"`
	B     int `json:"b"`
	Order int `json:"order,omitempty"`
}

// Model is a single set of atom coordinates. When Bonds is empty, bonds are
// derived from interatomic distances.
type Model struct {
	Label string `json:"label,omitempty"`
	Atoms []Atom `json:"atoms"`
	Bonds []Bond `json:"bonds,omitempty"`
}

// AtomCount returns the number of atoms in the model.
func (m *Model) AtomCount() int {
	return len(m.Atoms)
}

// Chains returns the chain ids in order of first appearance.
func (m *Model) Chains() []string {
	var chains []string
	seen := make(map[string]bool)
	for _, a := range m.Atoms {
		if !seen[a.Chain] {
			seen[a.Chain] = true
			chains = append(chains, a.Chain)
		}
	}
	return chains
}

// Operator is a symmetry operator applied to the model coordinates of a
// unit.
type Operator struct {
	Name   string     `json:"name"`
	Matrix mgl32.Mat4 `json:"matrix"`
}

// IdentityOperator is the operator of the asymmetric unit.
func IdentityOperator() Operator {
	return Operator{Name: "1_555", Matrix: mgl32.Ident4()}
}

// TranslationOperator returns an operator that shifts by t.
func TranslationOperator(name string, t mgl32.Vec3) Operator {
	return Operator{Name: name, Matrix: mgl32.Translate3D(t[0], t[1], t[2])}
}

// IsIdentity reports whether the operator leaves coordinates unchanged.
func (o Operator) IsIdentity() bool {
	return o.Matrix.ApproxEqual(mgl32.Ident4())
}

// ModelBuilder assembles a Model atom by atom. Chain and Residue set the
// context for subsequently added atoms.
type ModelBuilder struct {
	model   *Model
	chain   string
	residue string
	seqID   int
}

// NewModelBuilder starts an empty model.
func NewModelBuilder(label string) *ModelBuilder {
	return &ModelBuilder{model: &Model{Label: label}, chain: "A"}
}

// Chain sets the chain id for the following atoms.
func (b *ModelBuilder) Chain(id string) *ModelBuilder {
	b.chain = id
	return b
}

// Residue sets the residue name and sequence id for the following atoms.
func (b *ModelBuilder) Residue(name string, seqID int) *ModelBuilder {
	b.residue = name
	b.seqID = seqID
	return b
}

// Atom appends an atom and returns its model index.
func (b *ModelBuilder) Atom(name, element string, position mgl32.Vec3) int {
	b.model.Atoms = append(b.model.Atoms, Atom{
		Name:     name,
		Element:  NormalizeSymbol(element),
		Residue:  b.residue,
		SeqID:    b.seqID,
		Chain:    b.chain,
		Position: position,
	})
	return len(b.model.Atoms) - 1
}

// Bond records an explicit bond. Once any explicit bond exists, distance
// based bonding is disabled for the whole model.
func (b *ModelBuilder) Bond(a, c, order int) *ModelBuilder {
	b.model.Bonds = append(b.model.Bonds, Bond{A: a, B: c, Order: order})
	return b
}

// Model returns the assembled model.
func (b *ModelBuilder) Model() *Model {
	return b.model
}
