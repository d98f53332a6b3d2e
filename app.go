package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/query"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/repr"
	"github.com/arose/molstar/pkg/viewer"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	session *viewer.Session
}

// ErrorData is a JSON-serializable error for the frontend.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is what every mutating binding returns: the meshes to show after
// the call, the errors it produced and, for selections, what was selected.
type Result struct {
	Meshes    []export.MeshData `json:"meshes"`
	Errors    []ErrorData       `json:"errors"`
	Selection *viewer.LociInfo  `json:"selection,omitempty"`
}

// NewApp creates an App with the presets found at path, or the builtin
// ones when path is empty and no user file exists.
func NewApp(presetPath string) (*App, error) {
	presets, err := config.LoadOrBuiltin(presetPath)
	if err != nil {
		return nil, err
	}
	return &App{
		ctx:     context.Background(),
		session: viewer.NewSession(viewer.WithPresets(presets)),
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so builds are cancelled when the window closes.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called by Wails when the app exits.
func (a *App) shutdown(context.Context) {
	a.session.Close()
}

func (a *App) result(err error) Result {
	result := Result{Errors: []ErrorData{}}
	if err != nil {
		slog.Error("binding failed", "err", err)
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
	}
	result.Meshes = a.session.Meshes()
	return result
}

// LoadStructure loads a JSON structure document.
func (a *App) LoadStructure(doc string) Result {
	return a.result(a.session.Load(a.ctx, strings.NewReader(doc)))
}

// Kinds lists the representation kinds AddRepresentation accepts.
func (a *App) Kinds() []string {
	return repr.Names()
}

// Presets lists the preset names AddPreset accepts.
func (a *App) Presets() []string {
	return a.session.Presets()
}

// Representations lists the representations in order.
func (a *App) Representations() []viewer.EntryInfo {
	return a.session.Entries()
}

// AddRepresentation adds a representation of kind under name.
func (a *App) AddRepresentation(name, kind string, override props.Override) Result {
	return a.result(a.session.Add(a.ctx, name, kind, override))
}

// AddPreset adds a representation from a named preset.
func (a *App) AddPreset(name, preset string) Result {
	return a.result(a.session.AddPreset(a.ctx, name, preset))
}

// UpdateRepresentation applies override to the named representation.
func (a *App) UpdateRepresentation(name string, override props.Override) Result {
	return a.result(a.session.Update(a.ctx, name, override))
}

// RemoveRepresentation removes the named representation.
func (a *App) RemoveRepresentation(name string) Result {
	return a.result(a.session.Remove(name))
}

// Pick describes what a picking id refers to.
func (a *App) Pick(id render.PickingID) viewer.LociInfo {
	return a.session.Pick(id)
}

// Highlight moves the highlight to id. Meshes are only returned when the
// highlight changed.
func (a *App) Highlight(id render.PickingID) Result {
	info, changed := a.session.Highlight(id)
	result := Result{Errors: []ErrorData{}, Selection: &info}
	if changed {
		result.Meshes = a.session.Meshes()
	}
	return result
}

// Select evaluates a selection query and marks its result.
func (a *App) Select(source string) Result {
	info, evalErrs, err := a.session.Select(source)
	if err != nil {
		return a.result(err)
	}
	result := Result{Errors: []ErrorData{}}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, evalErrorData(e))
	}
	if len(evalErrs) == 0 {
		result.Selection = &info
		result.Meshes = a.session.Meshes()
	}
	return result
}

func evalErrorData(e query.EvalError) ErrorData {
	return ErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
}

// Meshes returns the current meshes.
func (a *App) Meshes() []export.MeshData {
	return a.session.Meshes()
}
