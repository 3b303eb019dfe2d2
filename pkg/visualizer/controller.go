package visualizer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/domgraph/pkg/community"
	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/observability"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
	"github.com/matzehuels/domgraph/pkg/viewport"
)

// Default canvas size.
const (
	DefaultWidth  = 960.0
	DefaultHeight = 720.0
)

// FitPadding is the margin kept around the graph by FitView.
const FitPadding = 40.0

// Controller is the state of one visualizer.
type Controller struct {
	mu sync.Mutex

	groups graph.TagGroups
	g      *graph.Graph

	engine *layout.Engine
	sel    selection.Model
	filter *search.Filter
	view   *viewport.Controller

	community  bool
	resolution float64

	logger *log.Logger
	closed bool
}

type config struct {
	params     layout.Params
	variant    string
	live       time.Duration
	width      float64
	height     float64
	community  bool
	resolution float64
	logger     *log.Logger
}

// Option configures a Controller.
type Option func(*config)

// WithLive runs force simulations on their own goroutine, ticking at interval.
// Without it every layout is settled before the call that triggered it returns.
func WithLive(interval time.Duration) Option {
	return func(c *config) { c.live = interval }
}

// WithParams sets the layout parameters.
func WithParams(p layout.Params) Option {
	return func(c *config) { c.params = p }
}

// WithLayout selects the initial layout variant.
func WithLayout(name string) Option {
	return func(c *config) { c.variant = name }
}

// WithSize sets the initial canvas size.
func WithSize(width, height float64) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithCommunity enables community decoration at the given resolution.
func WithCommunity(resolution float64) Option {
	return func(c *config) { c.community, c.resolution = true, resolution }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New returns a controller with no graph loaded.
func New(opts ...Option) *Controller {
	cfg := config{
		params:     layout.DefaultParams(),
		variant:    layout.DefaultName,
		width:      DefaultWidth,
		height:     DefaultHeight,
		resolution: community.DefaultResolution,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	engineOpts := []layout.EngineOption{layout.WithLogger(cfg.logger), layout.WithVariant(cfg.variant)}
	if cfg.live > 0 {
		engineOpts = append(engineOpts, layout.WithLive(cfg.live))
	}
	return &Controller{
		engine:     layout.NewEngine(cfg.params, engineOpts...),
		filter:     search.New(""),
		view:       viewport.New(cfg.width, cfg.height),
		community:  cfg.community,
		resolution: cfg.resolution,
		logger:     cfg.logger,
	}
}

// Summary describes a loaded graph.
type Summary struct {
	Nodes       int    `json:"nodes"`
	Links       int    `json:"links"`
	Tags        int    `json:"tags"`
	Elements    int    `json:"elements"`
	Layout      string `json:"layout"`
	Communities int    `json:"communities,omitempty"`
}

// VisualizeJSON builds a graph from groups and makes it the current graph.
// On error the previous state is kept.
func (c *Controller) VisualizeJSON(ctx context.Context, groups graph.TagGroups) (Summary, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(groups))
	start := time.Now()
	g, err := graph.Build(groups)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return Summary{}, err
	}
	hooks.OnBuildComplete(ctx, len(g.Nodes), time.Since(start), nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Summary{}, errClosed()
	}

	communities := 0
	if c.community {
		communities = community.Decorate(g, c.resolution)
	}

	c.sel.Clear()
	c.filter.SetQuery("")
	c.view.Reset()
	c.groups, c.g = groups, g

	name := c.engine.Name()
	hooks.OnLayoutStart(ctx, name, len(g.Nodes))
	start = time.Now()
	err = c.engine.Apply(g, c.view.Size())
	hooks.OnLayoutComplete(ctx, name, c.ticksLocked(), time.Since(start), err)
	if err != nil {
		return Summary{}, err
	}

	c.logger.Info("visualized payload", "tags", len(groups), "nodes", len(g.Nodes), "layout", name)
	return Summary{
		Nodes:       len(g.Nodes),
		Links:       len(g.Links),
		Tags:        len(groups),
		Elements:    groups.ElementCount(),
		Layout:      name,
		Communities: communities,
	}, nil
}

// VisualizeBytes parses a raw payload and loads it.
func (c *Controller) VisualizeBytes(ctx context.Context, data []byte) (Summary, error) {
	groups, err := graph.ParseTagGroups(data)
	if err != nil {
		return Summary{}, err
	}
	return c.VisualizeJSON(ctx, groups)
}

// SetLayout switches the layout variant. An unknown name returns
// UNKNOWN_LAYOUT and leaves the current layout running.
func (c *Controller) SetLayout(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed()
	}

	nodes := 0
	if c.g != nil {
		nodes = len(c.g.Nodes)
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, name, nodes)
	start := time.Now()
	err := c.engine.Use(name)
	hooks.OnLayoutComplete(ctx, name, c.ticksLocked(), time.Since(start), err)
	return err
}

// Layout returns the active layout name.
func (c *Controller) Layout() string {
	return c.engine.Name()
}

func (c *Controller) ticksLocked() int {
	if sim := c.engine.Simulation(); sim != nil {
		return sim.TickCount()
	}
	return 0
}

// SetSearch replaces the search query. Matching is recomputed immediately.
func (c *Controller) SetSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetQuery(query)
}

// Search returns the current query.
func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Query()
}

// Matches returns the ids of nodes matching the current query.
func (c *Controller) Matches() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil
	}
	return c.filter.Matches(c.g)
}

// SetGravity sets the center pull of the force layout.
func (c *Controller) SetGravity(v float64) error {
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gravity %g must not be negative", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SetGravity(v)
	return nil
}

// SetCharge sets the repulsion magnitude of the force layout.
func (c *Controller) SetCharge(v float64) error {
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "charge %g must not be negative", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SetCharge(v)
	return nil
}

// Forces returns the current force parameters.
func (c *Controller) Forces() layout.ForceParams {
	return c.engine.Params().Force
}

// SelectNode selects id and returns its connected set.
func (c *Controller) SelectNode(id int) (selection.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil, errNoGraph()
	}
	return c.sel.Select(c.g, id)
}

// ClearSelection removes the selection, as a background click does.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
}

// Selected returns the selected node id, if any.
func (c *Controller) Selected() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Selected()
}

// SetCommunity toggles community decoration of the current and future
// graphs and returns the number of communities found.
func (c *Controller) SetCommunity(enabled bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.community = enabled
	n := 0
	c.engine.View(func(g *graph.Graph) {
		if g == nil {
			return
		}
		if enabled {
			n = community.Decorate(g, c.resolution)
		} else {
			community.Clear(g)
		}
	})
	return n
}

// =============================================================================
// Viewport
// =============================================================================

// Resize changes the canvas size and re-fits the active layout.
func (c *Controller) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size %gx%g must be positive", width, height)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Resize(c.view.Resize(width, height))
}

// ZoomBy scales the view by factor around the screen point (px, py).
func (c *Controller) ZoomBy(factor, px, py float64) viewport.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ZoomBy(factor, px, py)
	return c.view.Transform()
}

// Pan moves the view by a screen offset.
func (c *Controller) Pan(dx, dy float64) viewport.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Pan(dx, dy)
	return c.view.Transform()
}

// ResetView restores the identity transform.
func (c *Controller) ResetView() viewport.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Reset()
	return c.view.Transform()
}

// FitView zooms and pans so the whole graph is visible.
func (c *Controller) FitView() viewport.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.frameLocked()
	if len(f.Nodes) > 0 {
		c.view.Fit(f.Bounds(), FitPadding)
	}
	return c.view.Transform()
}

// FocusNode centers the view on node id.
func (c *Controller) FocusNode(id int) (viewport.Transform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return c.view.Transform(), errNoGraph()
	}
	var (
		x, y  float64
		found bool
	)
	c.engine.View(func(g *graph.Graph) {
		if n, ok := g.Node(id); ok {
			x, y, found = n.X, n.Y, true
		}
	})
	if !found {
		return c.view.Transform(), errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	c.view.FocusOn(x, y)
	return c.view.Transform(), nil
}

// =============================================================================
// Dragging
// =============================================================================

// DragStart begins dragging node id.
func (c *Controller) DragStart(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return errNoGraph()
	}
	return c.engine.DragStart(id)
}

// Drag moves node id to the layout point (x, y).
func (c *Controller) Drag(id int, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return errNoGraph()
	}
	return c.engine.Drag(id, x, y)
}

// DragEnd releases node id.
func (c *Controller) DragEnd(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return errNoGraph()
	}
	return c.engine.DragEnd(id)
}

// =============================================================================
// Output
// =============================================================================

// Frame returns the current render frame. Without a graph the frame is
// empty.
func (c *Controller) Frame() render.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked()
}

func (c *Controller) frameLocked() render.Frame {
	var f render.Frame
	opts := c.frameOptionsLocked()
	c.engine.View(func(g *graph.Graph) {
		f = render.BuildFrame(g, opts)
	})
	return f
}

func (c *Controller) frameOptionsLocked() render.FrameOptions {
	return render.FrameOptions{
		Viewport:  c.view.Size(),
		Transform: c.view.Transform(),
		Selection: &c.sel,
		Search:    c.filter,
	}
}

// Graph returns a copy of the current graph, or nil.
func (c *Controller) Graph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out *graph.Graph
	c.engine.View(func(g *graph.Graph) {
		if g != nil {
			out = g.Clone()
		}
	})
	return out
}

// TagGroups returns the payload of the current graph.
func (c *Controller) TagGroups() graph.TagGroups {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups
}

// Export encodes the scoped graph in format.
func (c *Controller) Export(ctx context.Context, scope export.Scope, format string) ([]export.Download, error) {
	if err := export.ValidateFormat(format); err != nil {
		return nil, err
	}
	if _, err := export.ParseScope(string(scope)); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.g == nil {
		c.mu.Unlock()
		return nil, errNoGraph()
	}
	opts := c.frameOptionsLocked()
	// The selection and filter are copied so encoding can run unlocked.
	sel := c.sel
	opts.Selection = &sel
	opts.Search = search.New(c.filter.Query())
	var src export.Source
	c.engine.View(func(g *graph.Graph) {
		src = export.NewSource(g, scope, opts)
	})
	c.mu.Unlock()

	hooks := observability.Pipeline()
	formats := []string{format}
	hooks.OnExportStart(ctx, formats)
	start := time.Now()
	downloads, err := export.Encode(ctx, format, src)
	hooks.OnExportComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("exported", "format", format, "scope", scope, "files", len(downloads))
	return downloads, nil
}

// Ticks returns a channel notified after each live simulation tick, or nil
// when no simulation is running.
func (c *Controller) Ticks() <-chan struct{} {
	if sim := c.engine.Simulation(); sim != nil {
		return sim.Ticks()
	}
	return nil
}

// Close stops the simulation. Later payloads are rejected.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.engine.Stop()
}

func errNoGraph() error {
	return errors.New(errors.ErrCodeNoGraph, "no graph loaded")
}

func errClosed() error {
	return errors.New(errors.ErrCodeSessionNotFound, "visualizer closed")
}
