// Package viewer holds the state a host application drives: one loaded
// structure, an ordered list of named representations built from it, and
// the current highlight and selection.
package viewer

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/marker"
	"github.com/arose/molstar/pkg/names"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/query"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/repr"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
)

var (
	// ErrNoStructure is returned by operations that need a loaded structure.
	ErrNoStructure = errors.New("viewer: no structure loaded")
	// ErrDuplicateName is returned by Add for a name already in use.
	ErrDuplicateName = errors.New("viewer: representation name in use")
	// ErrUnknownName is returned for representation names not in the session.
	ErrUnknownName = errors.New("viewer: unknown representation")
)

// LociInfo describes a picked or selected loci for a host.
type LociInfo struct {
	Representation string    `json:"representation,omitempty"`
	Description    string    `json:"description"`
	Size           int       `json:"size"`
	Loci           loci.Loci `json:"-"`
}

type entry struct {
	name string
	kind string
	repr repr.Representation
}

// Session is safe for concurrent use. Builds run while the session lock is
// held, so operations are applied in call order.
type Session struct {
	mu        sync.Mutex
	structure *structure.Structure
	entries   []*entry
	engine    *query.Engine
	highlight loci.Loci
	selection loci.Loci

	presets  *config.File
	observer task.Observer
}

// Option configures a Session.
type Option func(*Session)

// WithPresets sets the presets AddPreset resolves names against. The
// default is config.Builtin().
func WithPresets(f *config.File) Option {
	return func(s *Session) { s.presets = f }
}

// WithObserver reports build progress of every update to o.
func WithObserver(o task.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		engine:    query.NewEngine(),
		highlight: loci.EmptyLoci,
		selection: loci.EmptyLoci,
		presets:   config.Builtin(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) runtime(ctx context.Context) *task.Runtime {
	if s.observer != nil {
		return task.NewRuntime(ctx, task.WithObserver(s.observer))
	}
	return task.NewRuntime(ctx)
}

// Structure returns the loaded structure, or nil.
func (s *Session) Structure() *structure.Structure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.structure
}

// Load decodes a structure document from r and loads it.
func (s *Session) Load(ctx context.Context, r io.Reader) error {
	st, err := structure.Decode(r)
	if err != nil {
		return err
	}
	return s.LoadStructure(ctx, st)
}

// LoadStructure rebuilds every representation for st. Either all of them
// switch to st or, on error, none does and the previous structure stays
// loaded. Highlight and selection are reset.
func (s *Session) LoadStructure(ctx context.Context, st *structure.Structure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.runtime(ctx)
	for i, e := range s.entries {
		if err := e.repr.Prepare(rt, e.repr.Props(), st); err != nil {
			for _, prepared := range s.entries[:i+1] {
				prepared.repr.Discard()
			}
			return errors.WithMessagef(err, "load structure: %s", e.name)
		}
	}
	for _, e := range s.entries {
		if err := e.repr.Commit(); err != nil {
			return errors.WithMessagef(err, "load structure: %s", e.name)
		}
	}
	s.structure = st
	s.highlight, s.selection = loci.EmptyLoci, loci.EmptyLoci
	s.markAll(loci.Everything(st), marker.Clear)
	slog.Info("structure loaded", "units", len(st.Units), "elements", st.ElementCount(), "representations", len(s.entries))
	return nil
}

func (s *Session) find(name string) (int, *entry, error) {
	i := slices.IndexFunc(s.entries, func(e *entry) bool { return e.name == name })
	if i < 0 {
		return -1, nil, names.Unknown(ErrUnknownName, name, s.names())
	}
	return i, s.entries[i], nil
}

func (s *Session) names() []string {
	return lo.Map(s.entries, func(e *entry, _ int) string { return e.name })
}

// Names returns the representation names in the order they were added.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names()
}

// EntryInfo summarizes one representation of the session.
type EntryInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Objects int    `json:"objects"`
}

// Entries lists the representations in order.
func (s *Session) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.entries, func(e *entry, _ int) EntryInfo {
		return EntryInfo{Name: e.name, Kind: e.kind, Objects: len(e.repr.RenderObjects())}
	})
}

// Add creates a representation of the given kind under name. It is built
// right away when a structure is loaded, and on the next load otherwise.
// The current selection is applied to it.
func (s *Session) Add(ctx context.Context, name, kind string, o props.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.entries, func(e *entry) bool { return e.name == name }) {
		return errors.Wrapf(ErrDuplicateName, "%q", name)
	}
	r, err := repr.New(kind, o)
	if err != nil {
		return err
	}
	if s.structure != nil {
		if err := repr.CreateOrUpdate(s.runtime(ctx), r, props.Override{}, s.structure); err != nil {
			r.Destroy()
			return errors.WithMessagef(err, "add %q", name)
		}
		r.Mark(s.selection, marker.Select)
		r.Mark(s.highlight, marker.Highlight)
	}
	s.entries = append(s.entries, &entry{name: name, kind: r.Label(), repr: r})
	slog.Info("representation added", "name", name, "kind", r.Label())
	return nil
}

// AddPreset adds a representation named name from a preset.
func (s *Session) AddPreset(ctx context.Context, name, preset string) error {
	p, err := s.presets.Preset(preset)
	if err != nil {
		return err
	}
	return s.Add(ctx, name, p.Representation, p.Override)
}

// Presets returns the names AddPreset accepts.
func (s *Session) Presets() []string {
	return s.presets.Names()
}

// Update applies o to the named representation and rebuilds what the
// change requires. On error the representation keeps its published
// objects.
func (s *Session) Update(ctx context.Context, name string, o props.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.find(name)
	if err != nil {
		return err
	}
	if s.structure == nil {
		return ErrNoStructure
	}
	if err := repr.CreateOrUpdate(s.runtime(ctx), e.repr, o, s.structure); err != nil {
		return errors.WithMessagef(err, "update %q", name)
	}
	return nil
}

// Remove destroys the named representation.
func (s *Session) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, e, err := s.find(name)
	if err != nil {
		return err
	}
	e.repr.Destroy()
	s.entries = slices.Delete(s.entries, i, i+1)
	slog.Info("representation removed", "name", name)
	return nil
}

// Props returns the committed properties of the named representation.
func (s *Session) Props(name string) (props.Props, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.find(name)
	if err != nil {
		return props.Props{}, err
	}
	return e.repr.Props(), nil
}

// RenderObjects returns the published objects of all representations in
// order.
func (s *Session) RenderObjects() []*render.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderObjects()
}

func (s *Session) renderObjects() []*render.Object {
	return lo.FlatMap(s.entries, func(e *entry, _ int) []*render.Object { return e.repr.RenderObjects() })
}

// Meshes returns the published objects flattened for a frontend.
func (s *Session) Meshes() []export.MeshData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.MeshDataList(s.renderObjects())
}

func (s *Session) pick(id render.PickingID) LociInfo {
	for _, e := range s.entries {
		if l := e.repr.GetLoci(id); !loci.IsEmpty(l) {
			return LociInfo{Representation: e.name, Description: loci.Describe(l), Size: loci.Size(l), Loci: l}
		}
	}
	return LociInfo{Description: loci.Describe(loci.EmptyLoci), Loci: loci.EmptyLoci}
}

// Pick resolves a picking id against the representations in order.
func (s *Session) Pick(id render.PickingID) LociInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pick(id)
}

func (s *Session) markAll(l loci.Loci, action marker.Action) bool {
	changed := false
	for _, e := range s.entries {
		if e.repr.Mark(l, action) {
			changed = true
		}
	}
	return changed
}

// Mark applies action to l in every representation and reports whether
// any marker changed.
func (s *Session) Mark(l loci.Loci, action marker.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markAll(l, action)
}

// Highlight moves the highlight to what id picks. An id that picks
// nothing only clears the old highlight.
func (s *Session) Highlight(id render.PickingID) (LociInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.pick(id)
	if loci.AreEqual(info.Loci, s.highlight) {
		return info, false
	}
	changed := s.markAll(s.highlight, marker.RemoveHighlight)
	if s.markAll(info.Loci, marker.Highlight) {
		changed = true
	}
	s.highlight = info.Loci
	return info, changed
}

// Select evaluates a query and makes its result the selection. Evaluation
// errors leave the selection unchanged.
func (s *Session) Select(source string) (LociInfo, []query.EvalError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.structure == nil {
		return LociInfo{}, nil, ErrNoStructure
	}
	l, evalErrs, err := s.engine.Evaluate(s.structure, source)
	if err != nil || len(evalErrs) > 0 {
		return LociInfo{}, evalErrs, err
	}
	s.markAll(s.selection, marker.Deselect)
	s.markAll(l, marker.Select)
	s.selection = l
	slog.Info("selection changed", "size", loci.Size(l))
	return LociInfo{Description: loci.Describe(l), Size: loci.Size(l), Loci: l}, nil, nil
}

// Selection returns the current selection.
func (s *Session) Selection() loci.Loci {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Close destroys every representation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.repr.Destroy()
	}
	s.entries = nil
}
