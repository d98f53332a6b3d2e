// Package structure is the in-memory structural data source consumed by the
// geometry pipeline. A Model holds atoms and optional explicit bonds; a
// Structure expands the model into symmetry units (one per chain and
// operator), groups units sharing the same invariant content into symmetry
// groups, and derives intra-unit bonds, inter-unit bonds and carbohydrate
// rings. A Structure is read-only once built.
package structure
