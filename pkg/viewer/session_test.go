package viewer_test

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/structure/structuretest"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/viewer"
)

func selected(obj *render.Object) int { return marker.Count(obj.Markers, marker.Selected) }

func highlighted(objs []*render.Object) int {
	return lo.SumBy(objs, func(o *render.Object) int { return marker.Count(o.Markers, marker.Highlighted) })
}

func TestLoadBuildsExistingRepresentations(t *testing.T) {
	ctx := context.Background()
	s := viewer.NewSession()
	require.NoError(t, s.Add(ctx, "bas", "ball-and-stick", props.Override{}))
	assert.Empty(t, s.RenderObjects(), "nothing is built before a structure is loaded")

	var doc bytes.Buffer
	require.NoError(t, structure.Encode(&doc, structuretest.TwoChains(t, 1).Model))
	require.NoError(t, s.Load(ctx, &doc))
	require.NotNil(t, s.Structure())

	objs := s.RenderObjects()
	assert.Len(t, objs, 5)
	assert.Len(t, s.Meshes(), 5)
	assert.Equal(t, []viewer.EntryInfo{{Name: "bas", Kind: "ball-and-stick", Objects: 5}}, s.Entries())

	assert.Error(t, s.Load(ctx, strings.NewReader(`{"version": "2.0.0"}`)))
	assert.Len(t, s.RenderObjects(), 5)
}

func TestAddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	s := viewer.NewSession()
	require.NoError(t, s.LoadStructure(ctx, structuretest.TwoChains(t, 1)))

	require.NoError(t, s.Add(ctx, "spheres", "spacefill", props.Override{}))
	assert.ErrorIs(t, s.Add(ctx, "spheres", "spacefill", props.Override{}), viewer.ErrDuplicateName)
	require.NoError(t, s.AddPreset(ctx, "glycans", "glycans"))
	assert.Equal(t, []string{"spheres", "glycans"}, s.Names())

	err := s.AddPreset(ctx, "x", "spacefil")
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
	assert.ErrorContains(t, err, `did you mean "spacefill"`)

	before := s.RenderObjects()
	err = s.Update(ctx, "spheres", props.Override{Alpha: lo.ToPtr[float32](-1)})
	assert.ErrorIs(t, err, props.ErrInvalid)
	assert.Equal(t, before, s.RenderObjects())

	require.NoError(t, s.Update(ctx, "spheres", props.Override{Alpha: lo.ToPtr[float32](0.5)}))
	p, err := s.Props("spheres")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), p.Alpha)
	assert.Equal(t, float32(0.5), s.RenderObjects()[0].Alpha)

	assert.ErrorIs(t, s.Update(ctx, "sphere", props.Override{}), viewer.ErrUnknownName)
	require.NoError(t, s.Remove("spheres"))
	assert.ErrorIs(t, s.Remove("spheres"), viewer.ErrUnknownName)
	assert.Equal(t, []string{"glycans"}, s.Names())
	assert.Contains(t, s.Presets(), "surface")

	s.Close()
	assert.Empty(t, s.Names())
}

func TestUpdateWithoutStructure(t *testing.T) {
	s := viewer.NewSession()
	require.NoError(t, s.Add(context.Background(), "spheres", "spacefill", props.Override{}))
	assert.ErrorIs(t, s.Update(context.Background(), "spheres", props.Override{}), viewer.ErrNoStructure)
	_, _, err := s.Select(`(everything)`)
	assert.ErrorIs(t, err, viewer.ErrNoStructure)
}

func TestPickAndHighlight(t *testing.T) {
	ctx := context.Background()
	s := viewer.NewSession()
	require.NoError(t, s.LoadStructure(ctx, structuretest.TwoChains(t, 1)))
	require.NoError(t, s.Add(ctx, "spheres", "spacefill", props.Override{}))
	objs := s.RenderObjects()
	require.Len(t, objs, 2)

	info := s.Pick(render.PickingID{ObjectID: objs[0].ID, GroupID: 1})
	assert.Equal(t, "spheres", info.Representation)
	assert.Equal(t, 1, info.Size)

	missed := s.Pick(render.PickingID{ObjectID: 1 << 20})
	assert.True(t, loci.IsEmpty(missed.Loci))
	assert.Empty(t, missed.Representation)

	_, changed := s.Highlight(render.PickingID{ObjectID: objs[0].ID, GroupID: 1})
	assert.True(t, changed)
	assert.Equal(t, marker.Highlighted, objs[0].Markers[1])

	_, changed = s.Highlight(render.PickingID{ObjectID: objs[0].ID, GroupID: 1})
	assert.False(t, changed)

	_, changed = s.Highlight(render.PickingID{ObjectID: objs[1].ID, GroupID: 2})
	assert.True(t, changed)
	assert.Equal(t, 1, highlighted(objs))
	assert.Equal(t, marker.Highlighted, objs[1].Markers[2])

	_, changed = s.Highlight(render.PickingID{ObjectID: 1 << 20})
	assert.True(t, changed)
	assert.Zero(t, highlighted(objs))
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	s := viewer.NewSession()
	require.NoError(t, s.LoadStructure(ctx, structuretest.TwoChains(t, 1)))
	require.NoError(t, s.Add(ctx, "spheres", "spacefill", props.Override{}))
	objs := s.RenderObjects()

	info, evalErrs, err := s.Select(`(atoms :chain "A")`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	assert.Equal(t, 4, info.Size)
	assert.Equal(t, 4, selected(objs[0]))
	assert.Zero(t, selected(objs[1]))

	_, _, err = s.Select(`(atoms :chain "B")`)
	require.NoError(t, err)
	assert.Zero(t, selected(objs[0]))
	assert.Equal(t, 3, selected(objs[1]))

	_, evalErrs, err = s.Select(`(atoms :colour "B")`)
	require.NoError(t, err)
	assert.NotEmpty(t, evalErrs)
	assert.Equal(t, 3, loci.Size(s.Selection()))

	// representations added later pick up the selection
	require.NoError(t, s.Add(ctx, "more", "spacefill", props.Override{}))
	added := s.RenderObjects()[2:]
	assert.Equal(t, 3, selected(added[1]))

	// a new structure resets it
	require.NoError(t, s.LoadStructure(ctx, structuretest.TwoChains(t, 1)))
	assert.True(t, loci.IsEmpty(s.Selection()))
	for _, obj := range s.RenderObjects() {
		assert.Zero(t, selected(obj), obj.Label)
	}
}

func TestLoadIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := viewer.NewSession()
	first := structuretest.TwoChains(t, 1)
	require.NoError(t, s.LoadStructure(ctx, first))
	require.NoError(t, s.Add(ctx, "bas", "ball-and-stick", props.Override{}))
	before := s.RenderObjects()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := s.LoadStructure(cancelled, structuretest.TwoChains(t, 2))
	assert.ErrorIs(t, err, task.ErrCancelled)
	assert.Same(t, first, s.Structure())
	assert.Equal(t, before, s.RenderObjects())
}

func TestObserverSeesProgress(t *testing.T) {
	var calls atomic.Int32
	s := viewer.NewSession(viewer.WithObserver(func(uuid.UUID, task.Progress) { calls.Add(1) }),
		viewer.WithPresets(config.Builtin()))
	require.NoError(t, s.LoadStructure(context.Background(), structuretest.TwoChains(t, 1)))
	require.NoError(t, s.AddPreset(context.Background(), "surface", "surface"))
	assert.Positive(t, calls.Load())
}
