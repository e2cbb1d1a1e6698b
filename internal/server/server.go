// Package server exposes the map, the chart and their interactions over
// HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/classify"
	"github.com/sells-group/housing-map/internal/interact"
	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/render"
	"github.com/sells-group/housing-map/internal/selection"
)

// RequestIDHeader carries the per-request ID on responses.
const RequestIDHeader = "X-Request-ID"

// DefaultLabelWidth is the info label width assumed when a placement
// request does not name one.
const DefaultLabelWidth = 150

// Server serves one controller and its interaction layer.
type Server struct {
	ctrl  *selection.Controller
	layer *interact.Layer
}

// New returns a server over ctrl and layer.
func New(ctrl *selection.Controller, layer *interact.Layer) *Server {
	return &Server{ctrl: ctrl, layer: layer}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/map.svg", s.handleSVG(render.SurfaceMap))
	r.Get("/chart.svg", s.handleSVG(render.SurfaceChart))

	r.Route("/api", func(r chi.Router) {
		r.Get("/attributes", s.handleAttributes)
		r.Get("/state", s.handleState)
		r.Get("/frame", s.handleFrame)
		r.Put("/selection", s.handleSelect)
		r.Post("/hover/{selector}", s.handleEnter)
		r.Delete("/hover/{selector}", s.handleLeave)
		r.Get("/label-position", s.handleLabelPosition)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAttributes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.DropdownOptions(s.ctrl.Attribute()))
}

type stateResponse struct {
	State selection.State `json:"state"`
	Title string          `json:"title"`
	Scale classify.Scale  `json:"scale"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.ctrl.State()
	writeJSON(w, http.StatusOK, stateResponse{
		State: st,
		Title: render.Title(st.Attribute),
		Scale: s.ctrl.Scale(),
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Render())
}

type selectRequest struct {
	Attribute string `json:"attribute"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd, err := s.ctrl.Select(req.Attribute)
	if err != nil {
		if eris.Is(err, model.ErrInvalidAttribute) {
			writeError(w, http.StatusBadRequest, "unrecognized attribute "+strconv.Quote(req.Attribute))
			return
		}
		logger(r).Error("server: select failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "select failed")
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	hover, err := s.layer.Enter(chi.URLParam(r, "selector"))
	if err != nil {
		s.hoverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hover)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	cmds, err := s.layer.Leave(chi.URLParam(r, "selector"))
	if err != nil {
		s.hoverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]render.Command{"commands": cmds})
}

func (s *Server) hoverError(w http.ResponseWriter, r *http.Request, err error) {
	if eris.Is(err, interact.ErrUnknownCounty) {
		writeError(w, http.StatusNotFound, "unknown county")
		return
	}
	logger(r).Error("server: hover failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "hover failed")
}

func (s *Server) handleLabelPosition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	viewport, errV := strconv.ParseFloat(q.Get("viewport"), 64)
	if errX != nil || errY != nil || errV != nil {
		writeError(w, http.StatusBadRequest, "x, y and viewport are required numbers")
		return
	}
	width := float64(DefaultLabelWidth)
	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			writeError(w, http.StatusBadRequest, "invalid width")
			return
		}
		width = f
	}
	writeJSON(w, http.StatusOK, interact.PlaceLabel(interact.Point{X: x, Y: y}, width, viewport))
}

func (s *Server) handleSVG(surface string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buf, err := s.svg(surface)
		if err != nil {
			logger(r).Error("server: render svg failed", zap.String("surface", surface), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf)
	}
}

// svg draws the current frame onto one surface.
func (s *Server) svg(surface string) ([]byte, error) {
	doc := render.NewDocument(surface)
	if err := doc.Apply(s.ctrl.Render().Commands); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.WriteSVG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type ctxKey struct{}

// requestID tags every request with a UUID and a request-scoped logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		log := zap.L().With(zap.String("component", "server"), zap.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(contextWithLogger(r, log)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger(r).Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func contextWithLogger(r *http.Request, log *zap.Logger) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, log)
}

// logger returns the request-scoped logger, or the global one.
func logger(r *http.Request) *zap.Logger {
	if log, ok := r.Context().Value(ctxKey{}).(*zap.Logger); ok {
		return log
	}
	return zap.L()
}
