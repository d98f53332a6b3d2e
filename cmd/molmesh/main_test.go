package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/task"
)

const example = "../../examples/glycopeptide.json"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--quiet"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats", example, "--repr", "ball-and-stick,glycans", "--select", "(carbohydrates)")
	require.NoError(t, err)
	assert.Contains(t, out, "glycopeptide: 2 units")
	assert.Contains(t, out, "2 carbohydrates")
	assert.Contains(t, out, "element-sphere")
	assert.Contains(t, out, "carbohydrate-symbol")
	// header plus ball-and-stick (5) and carbohydrate (1) objects
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1+1+6)
}

func TestStatsErrors(t *testing.T) {
	_, err := run(t, "stats", "missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "stats", example, "--repr", "spacefil")
	assert.ErrorContains(t, err, `did you mean "spacefill"`)

	_, err = run(t, "stats", example, "--select", "(atoms :colour 1)")
	assert.ErrorContains(t, err, "select")
}

func TestExportFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.stl", "out.svg", "out.msgpack", "out.json"} {
		path := filepath.Join(dir, name)
		_, err := run(t, "export", example, "-o", path, "--repr", "spacefill")
		require.NoError(t, err, name)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	f, err := os.Open(filepath.Join(dir, "out.msgpack"))
	require.NoError(t, err)
	defer f.Close()
	data, err := export.ReadMsgpack(f)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	raw, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	var meshes []export.MeshData
	require.NoError(t, json.Unmarshal(raw, &meshes))
	assert.Len(t, meshes, 2)

	_, err = run(t, "export", example, "-o", filepath.Join(dir, "out.obj"))
	assert.ErrorContains(t, err, "unknown format")
	_, err = run(t, "export", example, "-o", filepath.Join(dir, "out.bin"), "--format", "svg")
	assert.NoError(t, err)
	_, err = run(t, "export", example)
	assert.Error(t, err, "output is required")
}

func TestPresets(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "glycans")
	assert.Contains(t, out, "carbohydrate")
	assert.Contains(t, out, "molecular-surface")
}

func TestProgressObserver(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, progressObserver(&buf, false))

	obs := progressObserver(&buf, true)
	require.NotNil(t, obs)
	obs(uuid.New(), task.Progress{Message: "element spheres", Current: 1, Max: 4})
	assert.Contains(t, buf.String(), "element spheres  25%")
	obs(uuid.New(), task.Progress{Message: "molecular surface", IsIndeterminate: true})
	assert.Contains(t, buf.String(), "molecular surface...")

	assert.False(t, isTerminal(&buf))
}

func TestBrowserURL(t *testing.T) {
	tests := map[string]string{
		"localhost:8080": "http://localhost:8080",
		":9000":          "http://localhost:9000",
		"0.0.0.0:80":     "http://localhost:80",
		"example.org":    "http://example.org",
	}
	for addr, want := range tests {
		assert.Equal(t, want, browserURL(addr), addr)
	}
}
