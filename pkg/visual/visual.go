// Package visual binds one geometry recipe to a location iterator and a
// theme and manages the resulting render object: creation, incremental
// update, picking and marking.
//
// An update is split into Prepare, which computes the next render object
// without touching the published one, and Commit, which publishes it. A
// failed or cancelled Prepare leaves the published object as it was.
package visual

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/theme"
)

// ErrNotPrepared is returned by Commit when there is nothing to publish.
var ErrNotPrepared = errors.New("visual: nothing prepared")

// State is the lifecycle state of a visual.
type State int

const (
	Unbuilt   State = iota // no geometry yet
	Built                  // published object reflects the last update
	Stale                  // last update failed; the published object is older
	Destroyed              // released; every call except Destroy is a no-op
)

func (s State) String() string {
	switch s {
	case Built:
		return "built"
	case Stale:
		return "stale"
	case Destroyed:
		return "destroyed"
	default:
		return "unbuilt"
	}
}

// UpdateState gates the sub-steps of an update.
type UpdateState struct {
	CreateGeometry  bool
	UpdateTransform bool
	UpdateColor     bool
	UpdateSize      bool
	UpdateValues    bool
}

// Any reports whether any step has to run.
func (s UpdateState) Any() bool {
	return s.CreateGeometry || s.UpdateTransform || s.UpdateColor || s.UpdateSize || s.UpdateValues
}

// Data is the input of a visual.
type Data interface {
	// Root is the structure locations and loci refer to.
	Root() *structure.Structure
	// Label names the input in render object labels.
	Label() string
}

// Recipe is what distinguishes one kind of visual from another.
type Recipe[D Data] struct {
	Name string

	// CreateGeometry builds the mesh. Group ids must match the location
	// iterator. It should check in with rt regularly.
	CreateGeometry func(rt *task.Runtime, data D, th theme.Theme, p props.Props) (*mesh.Mesh, error)
	// CreateLocationIterator enumerates the (instance, group) pairs.
	CreateLocationIterator func(data D) *location.Iterator
	// CreateTransforms returns one matrix per instance.
	CreateTransforms func(data D) []float32

	// Mark applies a selection to the marker buffer through apply, which
	// changes the flags of the flat range [start, end). Optional; the
	// default looks every location of the selection up in the iterator.
	Mark func(data D, it *location.Iterator, l loci.Loci, apply func(start, end int) bool) bool
	// SetUpdateState adds recipe specific prop dependencies. Optional.
	SetUpdateState func(state *UpdateState, prev, next props.Props)
	// DiffData decides what a new input invalidates. Optional; the
	// default rebuilds geometry whenever the input changes.
	DiffData func(state *UpdateState, prev, next D)
}

type snapshot[D Data] struct {
	data     D
	props    props.Props
	iterator *location.Iterator
	object   *render.Object
}

// MeshVisual is a visual producing a mesh render object. It is not safe
// for concurrent use; callers serialize updates.
type MeshVisual[D Data] struct {
	recipe Recipe[D]
	id     int
	state  State

	current *snapshot[D]
	pending *snapshot[D]
	markers []byte
}

// New returns an unbuilt visual. The render object id is allocated here
// and kept for the visual's lifetime.
func New[D Data](recipe Recipe[D]) *MeshVisual[D] {
	return &MeshVisual[D]{recipe: recipe, id: render.NextObjectID()}
}

// Name returns the recipe name.
func (v *MeshVisual[D]) Name() string { return v.recipe.Name }

// ID returns the render object id.
func (v *MeshVisual[D]) ID() int { return v.id }

// State returns the lifecycle state.
func (v *MeshVisual[D]) State() State { return v.state }

// RenderObject returns the published render object, or nil.
func (v *MeshVisual[D]) RenderObject() *render.Object {
	if v.current == nil {
		return nil
	}
	return v.current.object
}

// Iterator returns the location iterator of the published object, or nil.
func (v *MeshVisual[D]) Iterator() *location.Iterator {
	if v.current == nil {
		return nil
	}
	return v.current.iterator
}

// CreateOrUpdate prepares and commits in one step.
func (v *MeshVisual[D]) CreateOrUpdate(rt *task.Runtime, p props.Props, data D) error {
	if err := v.Prepare(rt, p, data); err != nil {
		return err
	}
	return v.Commit()
}

// Prepare computes the next render object for p and data. Nothing is
// published; on error the visual becomes Stale if it was Built.
func (v *MeshVisual[D]) Prepare(rt *task.Runtime, p props.Props, data D) error {
	if v.state == Destroyed {
		return nil
	}
	v.pending = nil
	next, err := v.prepare(rt, p, data)
	if err != nil {
		if v.state == Built {
			v.state = Stale
		}
		return errors.WithMessagef(err, "visual %q", v.recipe.Name)
	}
	v.pending = next
	return nil
}

func (v *MeshVisual[D]) prepare(rt *task.Runtime, p props.Props, data D) (*snapshot[D], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := rt.Update(task.Progress{Message: v.recipe.Name, IsIndeterminate: true}); err != nil {
		return nil, err
	}
	start := time.Now()
	root := data.Root()
	resolved := p.Resolve(root.ElementCount())
	th, err := resolved.Theme(theme.Context{Structure: root})
	if err != nil {
		return nil, err
	}
	it := v.recipe.CreateLocationIterator(data)

	state := v.updateState(resolved, data, it)
	if v.current != nil && !state.Any() {
		return v.current, nil
	}

	obj := &render.Object{
		ID:            v.id,
		Label:         fmt.Sprintf("%s %s", v.recipe.Name, data.Label()),
		InstanceCount: it.InstanceCount,
		GroupCount:    it.GroupCount,
	}
	if v.current != nil {
		prev := v.current.object
		obj.Mesh, obj.Transforms, obj.Colors = prev.Mesh, prev.Transforms, prev.Colors
	}
	if state.CreateGeometry {
		m, err := v.recipe.CreateGeometry(rt, data, th, resolved)
		if err != nil {
			return nil, err
		}
		obj.Mesh = m
	}
	if state.UpdateTransform {
		obj.Transforms = v.recipe.CreateTransforms(data)
	}
	if state.UpdateColor {
		obj.Colors = theme.FillColors(it, th.Color)
	}
	obj.Values = render.Values{Alpha: resolved.Alpha, Visible: resolved.Visible}

	slog.Debug("visual prepared", "visual", v.recipe.Name, "id", v.id,
		"geometry", state.CreateGeometry, "triangles", obj.TriangleCount(),
		"groups", it.GroupCount, "instances", it.InstanceCount, "elapsed", time.Since(start))
	return &snapshot[D]{data: data, props: resolved, iterator: it, object: obj}, nil
}

// updateState diffs the published snapshot against the next props and
// input. Size changes rebuild geometry since sizes are baked into meshes.
func (v *MeshVisual[D]) updateState(next props.Props, data D, it *location.Iterator) UpdateState {
	if v.current == nil {
		return UpdateState{CreateGeometry: true, UpdateTransform: true, UpdateColor: true, UpdateValues: true}
	}
	prev := v.current.props
	var s UpdateState
	s.UpdateSize = prev.SizeTheme != next.SizeTheme || prev.SizeValue != next.SizeValue || prev.SizeFactor != next.SizeFactor
	s.UpdateColor = prev.ColorTheme != next.ColorTheme || prev.ColorValue != next.ColorValue
	s.UpdateValues = prev.Alpha != next.Alpha || prev.Visible != next.Visible
	if v.recipe.SetUpdateState != nil {
		v.recipe.SetUpdateState(&s, prev, next)
	}
	if changed := Data(v.current.data) != Data(data); changed {
		// Locations refer to the new input from now on.
		s.UpdateColor = true
		if v.recipe.DiffData != nil {
			v.recipe.DiffData(&s, v.current.data, data)
		} else {
			s.CreateGeometry = true
		}
	}
	if it.GroupCount != v.current.iterator.GroupCount || it.InstanceCount != v.current.iterator.InstanceCount {
		s.CreateGeometry = true
	}
	if s.UpdateSize {
		s.CreateGeometry = true
	}
	if s.CreateGeometry {
		s.UpdateTransform = true
		s.UpdateColor = true
	}
	return s
}

// Commit publishes the prepared object. Marker flags survive as long as
// the (instance, group) count does not change.
func (v *MeshVisual[D]) Commit() error {
	if v.state == Destroyed {
		return nil
	}
	if v.pending == nil {
		return errors.Wrap(ErrNotPrepared, v.recipe.Name)
	}
	next := v.pending
	v.pending = nil
	obj := next.object
	v.markers = marker.Resize(v.markers, obj.InstanceCount*obj.GroupCount)
	obj.Markers = v.markers
	v.current = next
	v.state = Built
	return nil
}

// Discard drops a prepared update. A Built visual becomes Stale since it
// no longer reflects what was asked for.
func (v *MeshVisual[D]) Discard() {
	if v.pending != nil && v.state == Built {
		v.state = Stale
	}
	v.pending = nil
}

// GetLoci maps a picking id back to a selection. Ids of other objects and
// out of range groups or instances give EmptyLoci.
func (v *MeshVisual[D]) GetLoci(id render.PickingID) loci.Loci {
	if v.current == nil || id.ObjectID != v.id {
		return loci.EmptyLoci
	}
	it := v.current.iterator
	if id.GroupID < 0 || id.GroupID >= it.GroupCount || id.InstanceID < 0 || id.InstanceID >= it.InstanceCount {
		return loci.EmptyLoci
	}
	return loci.FromLocation(v.current.data.Root(), it.Location(id.GroupID, id.InstanceID))
}

// Mark applies action to every (instance, group) whose location is part
// of l. Selections of other structures are ignored. It reports whether
// any flag changed.
func (v *MeshVisual[D]) Mark(l loci.Loci, action marker.Action) bool {
	if v.current == nil || loci.IsEmpty(l) || loci.StructureOf(l) != v.current.data.Root() {
		return false
	}
	apply := func(start, end int) bool {
		return marker.Apply(v.markers, start, end, action)
	}
	if v.recipe.Mark != nil {
		return v.recipe.Mark(v.current.data, v.current.iterator, l, apply)
	}
	return MarkByLookup(v.current.iterator, l, apply)
}

// MarkByLookup marks the iterator entries of every location of l.
func MarkByLookup(it *location.Iterator, l loci.Loci, apply func(start, end int) bool) bool {
	changed := false
	for _, loc := range loci.Locations(l) {
		for _, i := range it.Lookup(loc) {
			if apply(i, i+1) {
				changed = true
			}
		}
	}
	return changed
}

// Destroy releases the geometry and marker buffers. It is idempotent.
func (v *MeshVisual[D]) Destroy() {
	v.current, v.pending, v.markers = nil, nil, nil
	v.state = Destroyed
}
