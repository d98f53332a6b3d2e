// Package server exposes a viewer session over HTTP: a JSON API mirroring
// the desktop bindings, the embedded frontend, and a websocket that pushes
// meshes to every connected page after each change.
package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/query"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/repr"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/theme"
	"github.com/arose/molstar/pkg/viewer"
	"github.com/arose/molstar/web"
)

// ErrorData is one error of a Result.
type ErrorData struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// Result is the body of every mutating call.
type Result struct {
	Meshes    []export.MeshData `json:"meshes,omitempty"`
	Errors    []ErrorData       `json:"errors"`
	Selection *viewer.LociInfo  `json:"selection,omitempty"`
}

// AddRequest adds a representation either by kind and override or from a
// preset.
type AddRequest struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind,omitempty"`
	Preset   string         `json:"preset,omitempty"`
	Override props.Override `json:"override"`
}

// SelectRequest carries a selection query.
type SelectRequest struct {
	Source string `json:"source"`
}

// Server serves one session.
type Server struct {
	session *viewer.Session
	echo    *echo.Echo
	hub     *hub
}

// New returns a server for session.
func New(session *viewer.Session) *Server {
	s := &Server{session: session, echo: echo.New(), hub: newHub()}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")
	api.POST("/structure", s.loadStructure)
	api.GET("/kinds", func(c echo.Context) error { return c.JSON(http.StatusOK, repr.Names()) })
	api.GET("/presets", func(c echo.Context) error { return c.JSON(http.StatusOK, s.session.Presets()) })
	api.GET("/representations", func(c echo.Context) error { return c.JSON(http.StatusOK, s.session.Entries()) })
	api.POST("/representations", s.addRepresentation)
	api.PATCH("/representations/:name", s.updateRepresentation)
	api.DELETE("/representations/:name", s.removeRepresentation)
	api.GET("/meshes", func(c echo.Context) error { return c.JSON(http.StatusOK, s.session.Meshes()) })
	api.POST("/pick", s.pick)
	api.POST("/highlight", s.highlight)
	api.POST("/select", s.selectLoci)
	api.GET("/export/:format", s.export)
	s.echo.GET("/ws", s.serveWebsocket)
	s.echo.StaticFS("/", web.Dist())
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	slog.Info("serving", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	return nil
}

// Shutdown stops the listener and closes every websocket.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.echo.Shutdown(ctx)
}

// Broadcast pushes the current meshes to every websocket client.
func (s *Server) Broadcast() {
	s.hub.broadcast(message{Type: "meshes", Meshes: s.session.Meshes()})
}

// status maps session errors to HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, viewer.ErrUnknownName):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrDuplicateName), errors.Is(err, viewer.ErrNoStructure):
		return http.StatusConflict
	case errors.Is(err, props.ErrInvalid), errors.Is(err, theme.ErrUnknownTheme),
		errors.Is(err, repr.ErrUnknownRepresentation), errors.Is(err, config.ErrUnknownPreset),
		errors.Is(err, structure.ErrUnsupportedFormat), errors.Is(err, structure.ErrInvalidModel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respond answers a mutating call and broadcasts on success.
func (s *Server) respond(c echo.Context, err error) error {
	if err != nil {
		code := status(err)
		if code == http.StatusInternalServerError {
			slog.Error("request failed", "path", c.Path(), "err", err)
		}
		return c.JSON(code, Result{Errors: []ErrorData{{Message: err.Error()}}})
	}
	s.Broadcast()
	return c.JSON(http.StatusOK, Result{Meshes: s.session.Meshes(), Errors: []ErrorData{}})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, Result{Errors: []ErrorData{{Message: err.Error()}}})
}

func (s *Server) loadStructure(c echo.Context) error {
	err := s.session.Load(c.Request().Context(), c.Request().Body)
	if err != nil && status(err) == http.StatusInternalServerError && !errors.Is(err, task.ErrCancelled) {
		// the document is the only input
		return badRequest(c, err)
	}
	return s.respond(c, err)
}

func (s *Server) addRepresentation(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Name == "" {
		req.Name = req.Kind + req.Preset
	}
	ctx := c.Request().Context()
	if req.Preset != "" {
		return s.respond(c, s.session.AddPreset(ctx, req.Name, req.Preset))
	}
	return s.respond(c, s.session.Add(ctx, req.Name, req.Kind, req.Override))
}

func (s *Server) updateRepresentation(c echo.Context) error {
	var o props.Override
	if err := c.Bind(&o); err != nil {
		return badRequest(c, err)
	}
	return s.respond(c, s.session.Update(c.Request().Context(), c.Param("name"), o))
}

func (s *Server) removeRepresentation(c echo.Context) error {
	return s.respond(c, s.session.Remove(c.Param("name")))
}

func (s *Server) pick(c echo.Context) error {
	var id render.PickingID
	if err := c.Bind(&id); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(http.StatusOK, s.session.Pick(id))
}

func (s *Server) highlight(c echo.Context) error {
	var id render.PickingID
	if err := c.Bind(&id); err != nil {
		return badRequest(c, err)
	}
	info, changed := s.session.Highlight(id)
	result := Result{Errors: []ErrorData{}, Selection: &info}
	if changed {
		s.Broadcast()
		result.Meshes = s.session.Meshes()
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) selectLoci(c echo.Context) error {
	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	info, evalErrs, err := s.session.Select(req.Source)
	if err != nil {
		return s.respond(c, err)
	}
	if len(evalErrs) > 0 {
		result := Result{}
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, evalErrorData(e))
		}
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	s.Broadcast()
	return c.JSON(http.StatusOK, Result{Meshes: s.session.Meshes(), Errors: []ErrorData{}, Selection: &info})
}

func evalErrorData(e query.EvalError) ErrorData {
	return ErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
}

func (s *Server) export(c echo.Context) error {
	objs := s.session.RenderObjects()
	var buf bytes.Buffer
	switch c.Param("format") {
	case "svg":
		if err := export.WriteSVG(&buf, objs, export.DefaultSVGOptions); err != nil {
			return s.respond(c, err)
		}
		return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
	case "msgpack":
		if err := export.WriteMsgpack(&buf, objs); err != nil {
			return s.respond(c, err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", buf.Bytes())
	default:
		return c.JSON(http.StatusNotFound, Result{Errors: []ErrorData{{Message: "unknown export format " + c.Param("format")}}})
	}
}
