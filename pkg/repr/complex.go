package repr

import (
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/visual"
)

// Complex wraps a single visual built from the whole structure.
type Complex struct {
	label  string
	visual *visual.MeshVisual[visual.ComplexData]

	props   props.Props
	pending *props.Props
}

// NewComplex returns a complex representation around v.
func NewComplex(label string, p props.Props, v *visual.MeshVisual[visual.ComplexData]) *Complex {
	return &Complex{label: label, visual: v, props: p}
}

func (r *Complex) Label() string      { return r.label }
func (r *Complex) Props() props.Props { return r.props }

func (r *Complex) RenderObjects() []*render.Object {
	return renderObjects([]meshVisual{r.visual})
}

func (r *Complex) Prepare(rt *task.Runtime, p props.Props, s *structure.Structure) error {
	r.pending = nil
	if err := r.visual.Prepare(rt, p, visual.ComplexData{Structure: s}); err != nil {
		return errors.WithMessagef(err, "representation %q", r.label)
	}
	r.pending = &p
	return nil
}

func (r *Complex) Commit() error {
	if r.pending == nil {
		return errors.Wrap(visual.ErrNotPrepared, r.label)
	}
	if err := r.visual.Commit(); err != nil {
		return err
	}
	r.props, r.pending = *r.pending, nil
	return nil
}

func (r *Complex) Discard() {
	if r.pending != nil {
		r.visual.Discard()
	}
	r.pending = nil
}

func (r *Complex) GetLoci(id render.PickingID) loci.Loci {
	return r.visual.GetLoci(id)
}

func (r *Complex) Mark(l loci.Loci, action marker.Action) bool {
	return r.visual.Mark(l, action)
}

func (r *Complex) Destroy() {
	r.pending = nil
	r.visual.Destroy()
}
