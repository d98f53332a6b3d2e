package main

import (
	"strings"
	"testing"

	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/render"
)

// ---------------------------------------------------------------------------
// 1. Selection syntax errors: reported with line info, selection unchanged.
// ---------------------------------------------------------------------------

func TestE2ESelectSyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)
	app.AddRepresentation("spheres", "spacefill", props.Override{})

	// Put a valid selection on line 1, broken code on line 2 so line info is meaningful.
	result := app.Select("(everything)\n(atoms :chain \"A\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one error for unmatched parens")
	}
	if result.Selection != nil {
		t.Errorf("expected no selection on error, got %+v", result.Selection)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no mesh update on error, got %d", len(result.Meshes))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESelectUnknownKeyword(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)

	result := app.Select(`(atoms :colour "red")`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an unknown keyword")
	}
	if !strings.Contains(result.Errors[0].Message, "colour") {
		t.Errorf("expected error mentioning 'colour', got: %v", result.Errors)
	}
}

func TestE2ESelectBeforeLoad(t *testing.T) {
	app := newTestApp(t)
	result := app.Select("(everything)")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error without a structure")
	}
}

// ---------------------------------------------------------------------------
// 2. Selecting nothing: an empty result is not an error.
// ---------------------------------------------------------------------------

func TestE2ESelectNothing(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)

	for _, source := range []string{`(atoms :chain "Q")`, "", "; just a comment", "(nothing)"} {
		result := app.Select(source)
		if len(result.Errors) > 0 {
			t.Errorf("%q: unexpected errors: %v", source, result.Errors)
			continue
		}
		if result.Selection == nil || result.Selection.Size != 0 {
			t.Errorf("%q: expected an empty selection, got %+v", source, result.Selection)
		}
	}
}

// ---------------------------------------------------------------------------
// 3. Unknown names: suggestions for kinds, presets and representations.
// ---------------------------------------------------------------------------

func TestE2EUnknownKind(t *testing.T) {
	app := newTestApp(t)
	result := app.AddRepresentation("x", "spacefil", props.Override{})
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an unknown kind")
	}
	if !strings.Contains(result.Errors[0].Message, `did you mean "spacefill"`) {
		t.Errorf("expected a suggestion, got %q", result.Errors[0].Message)
	}
}

func TestE2EUnknownPreset(t *testing.T) {
	app := newTestApp(t)
	result := app.AddPreset("x", "glycan")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an unknown preset")
	}
	if !strings.Contains(result.Errors[0].Message, `"glycans"`) {
		t.Errorf("expected a suggestion, got %q", result.Errors[0].Message)
	}
}

func TestE2EDuplicateAndMissingRepresentation(t *testing.T) {
	app := newTestApp(t)
	if r := app.AddRepresentation("spheres", "spacefill", props.Override{}); len(r.Errors) > 0 {
		t.Fatalf("add: %v", r.Errors)
	}
	if r := app.AddRepresentation("spheres", "ball-and-stick", props.Override{}); len(r.Errors) == 0 {
		t.Error("expected an error for a duplicate name")
	}
	if r := app.RemoveRepresentation("ghost"); len(r.Errors) == 0 {
		t.Error("expected an error for a missing representation")
	}
	if r := app.UpdateRepresentation("ghost", props.Override{}); len(r.Errors) == 0 {
		t.Error("expected an error for a missing representation")
	}
}

// ---------------------------------------------------------------------------
// 4. Invalid properties: rejected before anything is built.
// ---------------------------------------------------------------------------

func TestE2EInvalidProperties(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)
	before := app.AddRepresentation("spheres", "spacefill", props.Override{}).Meshes

	tests := []props.Override{
		{Alpha: lo.ToPtr[float32](1.5)},
		{SizeFactor: lo.ToPtr[float32](0)},
		{ColorTheme: lo.ToPtr("rainbow")},
		{Quality: lo.ToPtr(props.Quality("ultra"))},
	}
	for _, o := range tests {
		result := app.UpdateRepresentation("spheres", o)
		if len(result.Errors) == 0 {
			t.Errorf("%+v: expected an error", o)
			continue
		}
		if len(result.Meshes) != len(before) || result.Meshes[0].ID != before[0].ID {
			t.Errorf("%+v: published meshes changed", o)
		}
	}
}

// ---------------------------------------------------------------------------
// 5. Property updates: colors and alpha reach the meshes.
// ---------------------------------------------------------------------------

func TestE2EUniformColor(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)
	app.AddRepresentation("spheres", "spacefill", props.Override{})

	result := app.UpdateRepresentation("spheres", props.Override{
		ColorTheme: lo.ToPtr("uniform"),
		ColorValue: lo.ToPtr("#ff0000"),
		Alpha:      lo.ToPtr[float32](0.5),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("update errors: %v", result.Errors)
	}
	for _, m := range result.Meshes {
		if m.Alpha != 0.5 {
			t.Errorf("mesh %q: alpha %v, want 0.5", m.Label, m.Alpha)
		}
		for i := 0; i < len(m.Colors); i += 3 {
			if m.Colors[i] != 1 || m.Colors[i+1] != 0 || m.Colors[i+2] != 0 {
				t.Fatalf("mesh %q: vertex %d is %v, want red", m.Label, i/3, m.Colors[i:i+3])
			}
		}
	}
}

// ---------------------------------------------------------------------------
// 6. Picking and highlighting through mesh picking ids.
// ---------------------------------------------------------------------------

func TestE2EPickAndHighlight(t *testing.T) {
	app := newTestApp(t)
	loadExample(t, app)
	meshes := app.AddRepresentation("spheres", "spacefill", props.Override{}).Meshes

	id := meshes[1].PickingID(0)
	info := app.Pick(id)
	if info.Representation != "spheres" || info.Size != 1 {
		t.Fatalf("unexpected pick: %+v", info)
	}

	result := app.Highlight(id)
	if result.Selection == nil || result.Selection.Size != 1 {
		t.Fatalf("unexpected highlight: %+v", result.Selection)
	}
	if len(result.Meshes) == 0 {
		t.Fatal("expected meshes after the highlight changed")
	}
	if again := app.Highlight(id); len(again.Meshes) != 0 {
		t.Error("expected no mesh update when the highlight did not change")
	}

	missed := app.Pick(render.PickingID{ObjectID: -1, InstanceID: -1, GroupID: -1})
	if missed.Size != 0 || missed.Representation != "" {
		t.Errorf("expected an empty pick, got %+v", missed)
	}
}

// ---------------------------------------------------------------------------
// 7. Rapid reloads: no panics, the last load wins.
// ---------------------------------------------------------------------------

func TestE2ERapidReload(t *testing.T) {
	app := newTestApp(t)
	app.AddPreset("bas", "ball-and-stick")
	app.AddPreset("glycans", "glycans")

	docs := []string{
		`{"atoms": [{"name": "CA", "element": "C", "residue": "ALA", "seqId": 1, "chain": "A", "position": [0, 0, 0]}]}`,
		`{"atoms": [`,
		`{"version": "9.0.0", "atoms": []}`,
		`{"atoms": []}`,
		`{"atoms": [{"name": "CA", "element": "C", "residue": "ALA", "seqId": 1, "chain": "A", "position": [0, 0, 0]},
		            {"name": "CB", "element": "C", "residue": "ALA", "seqId": 1, "chain": "A", "position": [1.5, 0, 0]}]}`,
	}
	for i, doc := range docs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			app.LoadStructure(doc)
		}()
	}
	if s := app.session.Structure(); s == nil || s.ElementCount() != 2 {
		t.Errorf("expected the last two-atom structure to be loaded")
	}
}

// ---------------------------------------------------------------------------
// 8. Listing: kinds, presets and representations.
// ---------------------------------------------------------------------------

func TestE2EListings(t *testing.T) {
	app := newTestApp(t)
	if !lo.Contains(app.Kinds(), "ball-and-stick") {
		t.Errorf("kinds: %v", app.Kinds())
	}
	if !lo.Contains(app.Presets(), "surface") {
		t.Errorf("presets: %v", app.Presets())
	}
	app.AddPreset("surface", "surface")
	reprs := app.Representations()
	if len(reprs) != 1 || reprs[0].Kind != "molecular-surface" || reprs[0].Objects != 0 {
		t.Errorf("representations: %+v", reprs)
	}
}
