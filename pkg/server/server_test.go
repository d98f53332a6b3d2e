package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/server"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/structure/structuretest"
	"github.com/arose/molstar/pkg/viewer"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.New(viewer.NewSession()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any) (int, server.Result) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var result server.Result
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	return res.StatusCode, result
}

func document(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, structure.Encode(&buf, structuretest.TwoChains(t, 1).Model))
	return buf.Bytes()
}

func TestRepresentationLifecycle(t *testing.T) {
	ts := newServer(t)

	code, result := call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "spheres", Kind: "spacefill"})
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, result.Errors)

	code, result = call(t, ts, http.MethodPost, "/api/structure", document(t))
	require.Equal(t, http.StatusOK, code, result.Errors)
	assert.Len(t, result.Meshes, 2)

	code, _ = call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "spheres", Kind: "spacefill"})
	assert.Equal(t, http.StatusConflict, code)

	code, result = call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "g", Preset: "glycanz"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, result.Errors[0].Message, `did you mean "glycans"`)

	code, result = call(t, ts, http.MethodPatch, "/api/representations/spheres", map[string]any{"alpha": 0.25})
	require.Equal(t, http.StatusOK, code, result.Errors)
	assert.Equal(t, float32(0.25), result.Meshes[0].Alpha)

	code, _ = call(t, ts, http.MethodPatch, "/api/representations/spheres", map[string]any{"colorTheme": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, ts, http.MethodDelete, "/api/representations/ghost", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, result = call(t, ts, http.MethodDelete, "/api/representations/spheres", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, result.Meshes)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	ts := newServer(t)
	code, result := call(t, ts, http.MethodPost, "/api/structure", []byte(`{"atoms": [`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, result.Errors)

	code, _ = call(t, ts, http.MethodPost, "/api/structure", []byte(`{"version": "3.0.0", "atoms": []}`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSelectAndHighlight(t *testing.T) {
	ts := newServer(t)
	code, _ := call(t, ts, http.MethodPost, "/api/select", server.SelectRequest{Source: "(everything)"})
	assert.Equal(t, http.StatusConflict, code)

	call(t, ts, http.MethodPost, "/api/structure", document(t))
	_, result := call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "spheres", Kind: "spacefill"})
	meshes := result.Meshes

	code, result = call(t, ts, http.MethodPost, "/api/select", server.SelectRequest{Source: `(atoms :chain "B")`})
	require.Equal(t, http.StatusOK, code, result.Errors)
	assert.Equal(t, 3, result.Selection.Size)

	code, result = call(t, ts, http.MethodPost, "/api/select", server.SelectRequest{Source: `(atoms :chain`})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, result.Errors)

	id := meshes[0].PickingID(0)
	code, result = call(t, ts, http.MethodPost, "/api/highlight", id)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "spheres", result.Selection.Representation)
	assert.NotEmpty(t, result.Meshes)

	res, err := http.Post(ts.URL+"/api/pick", "application/json", strings.NewReader(`{"objectId": -1, "instanceId": 0, "groupId": 0}`))
	require.NoError(t, err)
	defer res.Body.Close()
	var info viewer.LociInfo
	require.NoError(t, json.NewDecoder(res.Body).Decode(&info))
	assert.Zero(t, info.Size)
}

func TestExport(t *testing.T) {
	ts := newServer(t)
	call(t, ts, http.MethodPost, "/api/structure", document(t))
	call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "spheres", Kind: "spacefill"})

	res, err := http.Get(ts.URL + "/api/export/svg")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "<polygon")

	res, err = http.Get(ts.URL + "/api/export/msgpack")
	require.NoError(t, err)
	data, err := export.ReadMsgpack(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Len(t, data, 2)

	res, err = http.Get(ts.URL + "/api/export/obj")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFrontendIsServed(t *testing.T) {
	ts := newServer(t)
	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "<canvas")
}

type wsMessage struct {
	Type   string            `json:"type"`
	Meshes []export.MeshData `json:"meshes"`
}

func TestWebsocketPushesMeshes(t *testing.T) {
	ts := newServer(t)
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	read := func() wsMessage {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		var m wsMessage
		require.NoError(t, ws.ReadJSON(&m))
		return m
	}
	first := read()
	assert.Equal(t, "meshes", first.Type)
	assert.Empty(t, first.Meshes)

	call(t, ts, http.MethodPost, "/api/structure", document(t))
	call(t, ts, http.MethodPost, "/api/representations", server.AddRequest{Name: "bas", Kind: "ball-and-stick"})
	read() // after the load
	m := read()
	assert.Len(t, m.Meshes, 5)

	_, result := call(t, ts, http.MethodPost, "/api/highlight", render.PickingID{ObjectID: m.Meshes[0].ID})
	require.NotNil(t, result.Selection)
	assert.Len(t, read().Meshes, 5)
}
