// Package server exposes a running search over HTTP: JSON endpoints for the
// state, the widgets and the refinements, plus SSE and WebSocket streams of
// store updates.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/internal/app"
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/state"
)

// Server serves one App.
type Server struct {
	logger   *logrus.Entry
	app      *app.App
	origins  map[string]bool
	upgrader websocket.Upgrader
	server   *http.Server
}

// New creates a server for a. cfg may be nil.
func New(logger *logrus.Entry, a *app.App, cfg *config.ServerConfig) *Server {
	s := &Server{
		logger:  logger,
		app:     a,
		origins: map[string]bool{},
	}
	if cfg != nil {
		for _, o := range cfg.AllowedOrigins {
			s.origins[o] = true
		}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/refinements", s.handleRefinements)
	mux.HandleFunc("/api/widgets", s.handleWidgets)
	mux.HandleFunc("/api/facets", s.handleFacets)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe listens on a TCP address and blocks until the server stops
// or fails.
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.server = &http.Server{Handler: s.Handler()}
	s.logger.WithField("addr", listener.Addr().String()).Info("Server listening")
	err := s.server.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	return s.origins[origin] || s.origins["*"]
}

// snapshotView is the wire form of a store snapshot.
type snapshotView struct {
	store.Snapshot
	Href  string `json:"href"`
	Error string `json:"error,omitempty"`
}

func (s *Server) view(snap store.Snapshot) snapshotView {
	return snapshotView{
		Snapshot: snap,
		Href:     s.app.Manager().CreateHrefForState(snap.Widgets),
		Error:    snap.ErrorMessage(),
	}
}

// updateView is what stream clients receive.
type updateView struct {
	UpdateType string        `json:"update_type"`
	Source     string        `json:"source,omitempty"`
	ConfigFile string        `json:"config_file,omitempty"`
	State      *snapshotView `json:"state,omitempty"`
}

func (s *Server) convertUpdate(u store.Update) updateView {
	switch u.Type {
	case store.UpdateConfigReload:
		file, _ := u.Payload.(string)
		return updateView{UpdateType: string(u.Type), Source: u.Source, ConfigFile: file}
	default:
		v := s.view(u.Snapshot)
		return updateView{UpdateType: string(u.Type), Source: u.Source, State: &v}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnknownWidget:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeConnectorInvalid,
		errors.ErrCodeConfigInvalid, errors.ErrCodeParameterNotFound:
		return http.StatusBadRequest
	case errors.ErrCodeStateLocked:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	se, ok := err.(*errors.SearchError)
	if !ok {
		se = errors.Wrap(err, errors.ErrCodeInternal, "request failed")
	}
	status := statusOf(se)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, map[string]interface{}{"error": se})
}

// handleState returns the current snapshot, or replaces the search state on
// POST.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.view(s.app.Snapshot()))

	case http.MethodPost:
		var next state.State
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			s.writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "state must be a JSON object"))
			return
		}
		if next == nil {
			next = state.New()
		}
		s.app.SetState(next)
		s.logger.Debug("Search state replaced")
		writeJSON(w, http.StatusOK, s.view(s.app.Snapshot()))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := s.app.Query(req.Query); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(s.app.Snapshot()))
}

// handleRefinements lists the active refinements, or clears them on DELETE.
// The query parameter "query=true" includes the search box query.
func (s *Server) handleRefinements(w http.ResponseWriter, r *http.Request) {
	clearsQuery, _ := strconv.ParseBool(r.URL.Query().Get("query"))

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": s.app.Refinements(clearsQuery)})

	case http.MethodDelete:
		s.app.ClearRefinements(clearsQuery)
		s.logger.WithField("query", clearsQuery).Debug("Refinements cleared")
		writeJSON(w, http.StatusOK, s.view(s.app.Snapshot()))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type widgetView struct {
	app.Mounted
	DisplayName string          `json:"displayName"`
	Props       connector.Props `json:"props"`
}

func viewWidget(m app.Mounted) widgetView {
	return widgetView{Mounted: m, DisplayName: m.Widget.DisplayName(), Props: m.Widget.Props()}
}

// handleWidgets lists the widgets and their provided props. POST refines a
// widget with {"widget": name, "value": value}.
func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if name := r.URL.Query().Get("widget"); name != "" {
			m, err := s.app.Find(name)
			if err != nil {
				s.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, viewWidget(m))
			return
		}
		mounted := s.app.Widgets()
		views := make([]widgetView, 0, len(mounted))
		for _, m := range mounted {
			views = append(views, viewWidget(m))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req refineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}
		if err := s.app.Refine(req.Widget, req.Value); err != nil {
			s.writeError(w, err)
			return
		}
		s.logger.WithField("widget", req.Widget).Debug("Widget refined")
		writeJSON(w, http.StatusOK, s.view(s.app.Snapshot()))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type refineRequest struct {
	Widget string      `json:"widget"`
	Value  interface{} `json:"value"`
}

// handleFacets runs a facet value search: /api/facets?widget=brand&query=sa.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("widget")
	m, err := s.app.Find(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.app.SearchForFacetValues(m.Key, r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	hits, _ := res.For(m.Widget.ID())
	if hits == nil {
		hits = []search.FacetHit{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"widget": m.Key, "hits": hits})
}
