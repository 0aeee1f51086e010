// Package manage provides HTTP handlers for browsing and curating a photo wall.
package manage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
	"github.com/tstromberg/photowall/pkg/render"
)

var errMissingID = errors.New("missing id")

// Options configures a Server.
type Options struct {
	Title string
	// OutDir holds thumbnails and mirrored originals; empty disables static files.
	OutDir string
	Source func(i *photo.Item) string
}

// Server is a server for the photo wall web app.
type Server struct {
	// mu serializes every engine call, standing in for a UI thread.
	mu sync.Mutex
	e  *feed.Engine
	o  Options
}

// New creates a new server.
func New(e *feed.Engine, o Options) *Server {
	return &Server{e: e, o: o}
}

// Update runs fn with exclusive access to the engine, e.g. after a rescan.
func (s *Server) Update(fn func(e *feed.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.e)
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.IndexHandler())
	mux.HandleFunc("GET /feed", s.FeedHandler())
	mux.HandleFunc("GET /selection", s.SelectionHandler())
	mux.HandleFunc("POST /select", s.SelectHandler())
	mux.HandleFunc("POST /menu", s.MenuHandler())
	mux.HandleFunc("POST /menu/close", s.MenuCloseHandler())
	mux.HandleFunc("POST /action", s.ActionHandler())
	mux.HandleFunc("POST /click", s.ClickHandler())
	mux.HandleFunc("POST /reset", s.ResetHandler())
	if s.o.OutDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.o.OutDir)))
	}
	return mux
}

// IndexHandler serves the full page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		p := render.FromEngine(s.e, s.o.Title, s.o.Source)
		p.Live = true
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.Document(w, p); err != nil {
			klog.Errorf("render index: %v", err)
		}
	}
}

// FeedHandler reports width and scroll position and returns the windowed rows.
func (s *Server) FeedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width, err1 := floatParam(r, "width")
		scroll, err2 := floatParam(r, "scroll")
		height, err3 := floatParam(r, "height")
		if err := errors.Join(err1, err2, err3); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		s.e.OnWidthChanged(width)
		win := s.e.Scroll(scroll, height)
		klog.V(1).Infof("feed width=%v scroll=%v height=%v: rows %d-%d", width, scroll, height, win.Start, win.End)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.HTML(w, render.FromEngine(s.e, s.o.Title, s.o.Source)); err != nil {
			klog.Errorf("render feed: %v", err)
		}
	}
}

type selectionResponse struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// SelectionHandler returns the current selection.
func (s *Server) SelectionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.writeSelection(w)
	}
}

// SelectHandler toggles the selection of an item.
func (s *Server) SelectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := s.item(w, r)
		if !ok {
			return
		}
		s.e.Overlay().ToggleSelect(i.ID)
		s.writeSelection(w)
	}
}

// MenuHandler opens the contextual menu for an item.
func (s *Server) MenuHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := s.item(w, r)
		if !ok {
			return
		}
		s.e.Overlay().OpenMenu(i.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// MenuCloseHandler closes the menu.
func (s *Server) MenuCloseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.e.Overlay().Interact("")
		w.WriteHeader(http.StatusNoContent)
	}
}

// ActionHandler runs a contextual menu action.
func (s *Server) ActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := overlay.Action(r.URL.Query().Get("kind"))
		if !slices.Contains(overlay.Actions, a) {
			http.Error(w, "unknown action: "+string(a), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := s.item(w, r)
		if !ok {
			return
		}
		s.e.Overlay().RequestContextAction(i.ID, a)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClickHandler reports a click on an item.
func (s *Server) ClickHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := s.item(w, r)
		if !ok {
			return
		}
		s.e.Overlay().Click(i)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ResetHandler clears the selection and closes the menu.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		klog.Infof("reset: dropping %d selected", s.e.Overlay().Count())
		s.e.Overlay().Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}

// item looks up the id parameter, writing an error response if it is unusable.
func (s *Server) item(w http.ResponseWriter, r *http.Request) (*photo.Item, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, errMissingID.Error(), http.StatusBadRequest)
		return nil, false
	}
	i, ok := s.e.Item(id)
	if !ok {
		http.Error(w, "no such item: "+id, http.StatusNotFound)
		return nil, false
	}
	return i, true
}

func (s *Server) writeSelection(w http.ResponseWriter) {
	sel := s.e.Overlay().Selection()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(selectionResponse{Count: len(sel), IDs: sel.IDs()}); err != nil {
		klog.Errorf("encode selection: %v", err)
	}
}

func floatParam(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", name, v)
	}
	return f, nil
}
