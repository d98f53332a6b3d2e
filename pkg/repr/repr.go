// Package repr groups visuals into representations: one visual per
// symmetry group, one visual for the whole structure, or an ordered
// composite of both. Updates are two-phase so a representation publishes
// all of its render objects or none.
package repr

import (
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
)

// ErrUnknownRepresentation is returned by New for unregistered names.
var ErrUnknownRepresentation = errors.New("repr: unknown representation")

// Representation is a set of visuals built from one structure with one
// set of properties.
type Representation interface {
	Label() string
	// Props returns the properties of the last committed update.
	Props() props.Props
	// RenderObjects returns the published objects in declared order.
	RenderObjects() []*render.Object

	// Prepare builds the next render objects without publishing them.
	// On error nothing prepared is kept.
	Prepare(rt *task.Runtime, p props.Props, s *structure.Structure) error
	// Commit publishes what Prepare built.
	Commit() error
	// Discard drops what Prepare built.
	Discard()

	GetLoci(id render.PickingID) loci.Loci
	Mark(l loci.Loci, action marker.Action) bool
	Destroy()
}

// CreateOrUpdate applies o on top of the current properties of r, then
// prepares and commits.
func CreateOrUpdate(rt *task.Runtime, r Representation, o props.Override, s *structure.Structure) error {
	p := r.Props().Merge(o)
	if err := p.Validate(); err != nil {
		return errors.WithMessagef(err, "representation %q", r.Label())
	}
	if err := r.Prepare(rt, p, s); err != nil {
		return err
	}
	return r.Commit()
}

// meshVisual is what representations need from a visual, independent of
// its input type.
type meshVisual interface {
	Name() string
	RenderObject() *render.Object
	GetLoci(id render.PickingID) loci.Loci
	Mark(l loci.Loci, action marker.Action) bool
	Commit() error
	Discard()
	Destroy()
}
