package repr

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/visual"
)

// Composite is an ordered list of representations updated as one. The
// order is the picking priority: GetLoci answers with the first part that
// hits.
type Composite struct {
	label string
	parts []Representation

	props   props.Props
	pending *props.Props
}

// NewComposite returns a composite of parts in priority order.
func NewComposite(label string, p props.Props, parts ...Representation) *Composite {
	return &Composite{label: label, parts: parts, props: p}
}

func (r *Composite) Label() string      { return r.label }
func (r *Composite) Props() props.Props { return r.props }

// Parts returns the sub-representations in priority order.
func (r *Composite) Parts() []Representation { return r.parts }

func (r *Composite) RenderObjects() []*render.Object {
	var out []*render.Object
	for _, part := range r.parts {
		out = append(out, part.RenderObjects()...)
	}
	return out
}

// Prepare prepares every part under rt, concurrently when p.Concurrent is
// set. If any part fails, all parts are discarded.
func (r *Composite) Prepare(rt *task.Runtime, p props.Props, s *structure.Structure) error {
	r.pending = nil
	start := time.Now()

	var err error
	if p.Concurrent {
		var g errgroup.Group
		for _, part := range r.parts {
			g.Go(func() error { return part.Prepare(rt, p, s) })
		}
		err = g.Wait()
	} else {
		for _, part := range r.parts {
			if err = part.Prepare(rt, p, s); err != nil {
				break
			}
		}
	}
	if err != nil {
		for _, part := range r.parts {
			part.Discard()
		}
		return errors.WithMessagef(err, "representation %q", r.label)
	}

	r.pending = &p
	slog.Debug("representation prepared", "representation", r.label, "parts", len(r.parts),
		"concurrent", p.Concurrent, "elapsed", time.Since(start))
	return nil
}

// Commit publishes all parts.
func (r *Composite) Commit() error {
	if r.pending == nil {
		return errors.Wrap(visual.ErrNotPrepared, r.label)
	}
	for _, part := range r.parts {
		if err := part.Commit(); err != nil {
			return errors.WithMessagef(err, "representation %q", r.label)
		}
	}
	r.props, r.pending = *r.pending, nil
	return nil
}

func (r *Composite) Discard() {
	for _, part := range r.parts {
		part.Discard()
	}
	r.pending = nil
}

func (r *Composite) GetLoci(id render.PickingID) loci.Loci {
	for _, part := range r.parts {
		if l := part.GetLoci(id); !loci.IsEmpty(l) {
			return l
		}
	}
	return loci.EmptyLoci
}

// Mark marks every part; all parts see the action even after one reports
// a change.
func (r *Composite) Mark(l loci.Loci, action marker.Action) bool {
	changed := false
	for _, part := range r.parts {
		if part.Mark(l, action) {
			changed = true
		}
	}
	return changed
}

// Destroy destroys every part.
func (r *Composite) Destroy() {
	r.pending = nil
	for _, part := range r.parts {
		part.Destroy()
	}
}
