package repr

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/visual"
)

type unitsVisual = visual.MeshVisual[visual.UnitsData]

// unitsState is the visual set of one update: one visual per symmetry
// group, in group order.
type unitsState struct {
	visuals []*unitsVisual
	byHash  map[uint64]*unitsVisual
	props   props.Props
}

type unitsPending struct {
	next    unitsState
	created []*unitsVisual // new in next
	removed []*unitsVisual // in current, not in next
}

// Units keeps one visual per symmetry group. Visuals are matched to groups
// by content hash across updates, so a structure whose groups only moved
// updates transforms instead of geometry.
type Units struct {
	label     string
	newVisual func() *unitsVisual

	current unitsState
	pending *unitsPending
}

// NewUnits returns a units representation creating its visuals with
// newVisual.
func NewUnits(label string, p props.Props, newVisual func() *unitsVisual) *Units {
	return &Units{label: label, newVisual: newVisual, current: unitsState{props: p}}
}

func (r *Units) Label() string      { return r.label }
func (r *Units) Props() props.Props { return r.current.props }

func (r *Units) RenderObjects() []*render.Object {
	return renderObjects(r.current.visuals)
}

func (r *Units) Prepare(rt *task.Runtime, p props.Props, s *structure.Structure) error {
	r.Discard()
	start := time.Now()
	next := &unitsPending{next: unitsState{byHash: make(map[uint64]*unitsVisual, len(s.Groups)), props: p}}
	used := make(map[*unitsVisual]bool, len(s.Groups))

	for _, g := range s.Groups {
		v, ok := r.current.byHash[g.Hash]
		if !ok || used[v] {
			v = r.newVisual()
			next.created = append(next.created, v)
		}
		used[v] = true
		next.next.visuals = append(next.next.visuals, v)
		if _, dup := next.next.byHash[g.Hash]; !dup {
			next.next.byHash[g.Hash] = v
		}
		if err := v.Prepare(rt, p, visual.UnitsData{Structure: s, Group: g}); err != nil {
			discardAll(next.next.visuals, next.created)
			return errors.WithMessagef(err, "representation %q", r.label)
		}
	}
	for _, v := range r.current.visuals {
		if !used[v] {
			next.removed = append(next.removed, v)
		}
	}
	r.pending = next
	slog.Debug("representation prepared", "representation", r.label, "groups", len(s.Groups),
		"created", len(next.created), "removed", len(next.removed), "elapsed", time.Since(start))
	return nil
}

func (r *Units) Commit() error {
	if r.pending == nil {
		return errors.Wrap(visual.ErrNotPrepared, r.label)
	}
	pending := r.pending
	r.pending = nil
	for _, v := range pending.next.visuals {
		if err := v.Commit(); err != nil {
			return errors.WithMessagef(err, "representation %q", r.label)
		}
	}
	for _, v := range pending.removed {
		v.Destroy()
	}
	r.current = pending.next
	return nil
}

func (r *Units) Discard() {
	if r.pending == nil {
		return
	}
	discardAll(r.pending.next.visuals, r.pending.created)
	r.pending = nil
}

func (r *Units) GetLoci(id render.PickingID) loci.Loci {
	return getLoci(r.current.visuals, id)
}

func (r *Units) Mark(l loci.Loci, action marker.Action) bool {
	return mark(r.current.visuals, l, action)
}

func (r *Units) Destroy() {
	r.Discard()
	for _, v := range r.current.visuals {
		v.Destroy()
	}
	r.current = unitsState{props: r.current.props}
}

// discardAll drops the prepared updates of visuals and destroys the ones
// that were created for them.
func discardAll[V meshVisual](visuals []V, created []V) {
	isNew := make(map[meshVisual]bool, len(created))
	for _, v := range created {
		isNew[v] = true
		v.Destroy()
	}
	for _, v := range visuals {
		if !isNew[v] {
			v.Discard()
		}
	}
}

func renderObjects[V meshVisual](visuals []V) []*render.Object {
	out := make([]*render.Object, 0, len(visuals))
	for _, v := range visuals {
		if obj := v.RenderObject(); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

func getLoci[V meshVisual](visuals []V, id render.PickingID) loci.Loci {
	for _, v := range visuals {
		if l := v.GetLoci(id); !loci.IsEmpty(l) {
			return l
		}
	}
	return loci.EmptyLoci
}

func mark[V meshVisual](visuals []V, l loci.Loci, action marker.Action) bool {
	changed := false
	for _, v := range visuals {
		if v.Mark(l, action) {
			changed = true
		}
	}
	return changed
}
