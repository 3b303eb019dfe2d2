package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/session"
	"github.com/matzehuels/domgraph/pkg/visualizer"
)

type ctxKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKey{}).(*session.Session)
	return sess
}

func controller(r *http.Request) *visualizer.Controller {
	return sessionFrom(r.Context()).Controller
}

// withSession resolves {id} to a session or replies 404.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			respondError(w, errors.New(errors.ErrCodeSessionNotFound, "visualizer %s not found", id))
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleOpen focuses the existing visualizer or creates one.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	sess, created, err := s.store.Open(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if created {
		hooks().OnSessionOpen(r.Context(), sess.ID)
		s.logger.Info("visualizer opened", "id", sess.ID)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, reply{Success: true, TabID: sess.ID, Data: map[string]bool{"created": created}})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		respondError(w, err)
		return
	}
	hooks().OnSessionClose(r.Context(), sess.ID)
	s.logger.Info("visualizer closed", "id", sess.ID)
	respondOK(w, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	c := controller(r)
	var nodes, links int
	if g := c.Graph(); g != nil {
		nodes, links = len(g.Nodes), len(g.Links)
	}
	sel, hasSel := c.Selected()
	data := map[string]any{
		"layout": c.Layout(),
		"nodes":  nodes,
		"links":  links,
		"search": c.Search(),
	}
	if hasSel {
		data["selected"] = sel
	}
	respondOK(w, data)
}

// handleVisualizeActive relays a payload to the open visualizer.
func (s *Server) handleVisualizeActive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Active(r.Context())
	if err != nil {
		respondError(w, errors.New(errors.ErrCodeSessionNotFound, "Visualizer tab not created"))
		return
	}
	s.visualize(w, r, sess.Controller)
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	s.visualize(w, r, controller(r))
}

func (s *Server) visualize(w http.ResponseWriter, r *http.Request, c *visualizer.Controller) {
	data, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	summary, err := c.VisualizeBytes(r.Context(), data)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, summary)
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c := controller(r)
	if err := c.SetLayout(r.Context(), req.Layout); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"layout": c.Layout()})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c := controller(r)
	c.SetSearch(req.Query)
	matches := c.Matches()
	if matches == nil {
		matches = []int{}
	}
	respondOK(w, map[string]any{"query": req.Query, "matches": matches})
}

type forcesRequest struct {
	Gravity *float64 `json:"gravity"`
	Charge  *float64 `json:"charge"`
}

func (s *Server) handleForces(w http.ResponseWriter, r *http.Request) {
	var req forcesRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c := controller(r)
	if req.Gravity != nil {
		if err := c.SetGravity(*req.Gravity); err != nil {
			respondError(w, err)
			return
		}
	}
	if req.Charge != nil {
		if err := c.SetCharge(*req.Charge); err != nil {
			respondError(w, err)
			return
		}
	}
	p := c.Forces()
	respondOK(w, map[string]float64{"gravity": p.Gravity, "charge": p.Charge})
}

type selectRequest struct {
	ID *int `json:"id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ID == nil {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "id is required"))
		return
	}
	set, err := controller(r).SelectNode(*req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]any{"selected": *req.ID, "connected": set.IDs()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	controller(r).ClearSelection()
	respondOK(w, nil)
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := controller(r).Resize(req.Width, req.Height); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, req)
}

type zoomRequest struct {
	Factor float64 `json:"factor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Factor <= 0 {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "zoom factor must be positive"))
		return
	}
	respondOK(w, controller(r).ZoomBy(req.Factor, req.X, req.Y))
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	respondOK(w, controller(r).FitView())
}

// Drag phases.
const (
	DragStart = "start"
	DragMove  = "move"
	DragEnd   = "end"
)

type dragRequest struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phase string  `json:"phase"`
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c := controller(r)
	var err error
	switch req.Phase {
	case DragStart:
		err = c.DragStart(req.ID)
	case DragMove, "":
		err = c.Drag(req.ID, req.X, req.Y)
	case DragEnd:
		err = c.DragEnd(req.ID)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown drag phase %q", req.Phase)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	respondOK(w, controller(r).Frame())
}

// handleExport writes a single-file export as a download. Multi-file
// formats (CSV) are returned as a JSON list of downloads.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	scope, err := export.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, err)
		return
	}
	downloads, err := controller(r).Export(r.Context(), scope, format)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(downloads) != 1 {
		respondOK(w, downloads)
		return
	}
	d := downloads[0]
	w.Header().Set("Content-Type", d.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}
