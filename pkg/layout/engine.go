package layout

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

// Engine drives the active layout variant for one graph.
//
// It guarantees there is never more than one simulation: applying a new graph
// or switching variants stops the previous simulation before any node is
// touched. Lock order is Engine before Simulation; a simulation's ticking
// goroutine only takes its own lock.
type Engine struct {
	mu sync.Mutex

	params   Params
	active   Layout
	variant  string
	sim      *Simulation
	g        *graph.Graph
	vp       Viewport
	interval time.Duration
	logger   *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLive makes force simulations tick on their own goroutine at the given
// interval instead of settling synchronously.
func WithLive(interval time.Duration) EngineOption {
	return func(e *Engine) {
		if interval <= 0 {
			interval = DefaultTickInterval
		}
		e.interval = interval
	}
}

// WithLogger sets the logger used for layout warnings.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithVariant selects the initial variant. Unknown names keep the default
// and log a warning.
func WithVariant(name string) EngineOption {
	return func(e *Engine) { e.variant = name }
}

// NewEngine returns an engine using the default variant.
func NewEngine(p Params, opts ...EngineOption) *Engine {
	p.Force.SetDefaults()
	e := &Engine{params: p, variant: DefaultName, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	if e.variant == "" {
		e.variant = DefaultName
	}
	l, err := New(e.variant, p)
	if err != nil {
		e.logger.Warn("unknown layout, using default", "requested", e.variant, "active", DefaultName)
		l, _ = New(DefaultName, p)
	}
	e.active = l
	return e
}

// Apply lays out a new graph with the active variant, replacing any
// previous graph and simulation.
func (e *Engine) Apply(g *graph.Graph, vp Viewport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.g, e.vp = g, vp
	return e.applyLocked()
}

// Use switches to the named variant and re-lays out the current graph.
// An unknown name fails closed: the active variant keeps running.
func (e *Engine) Use(name string) error {
	next, err := New(name, e.Params())
	if err != nil {
		e.logger.Warn("unknown layout, keeping current", "requested", name, "active", e.Name())
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.active = next
	return e.applyLocked()
}

func (e *Engine) applyLocked() error {
	if e.g == nil {
		return nil
	}
	sim, err := e.active.Apply(e.g, e.vp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "apply %s layout", e.active.Name())
	}
	e.sim = sim
	if sim == nil {
		return nil
	}
	if e.interval > 0 {
		sim.Start(e.interval)
	} else {
		sim.Settle(0)
	}
	return nil
}

// Resize re-fits the layout to a new viewport. Radial positions are
// recomputed; a force simulation is re-centered and keeps its velocities.
func (e *Engine) Resize(vp Viewport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vp = vp
	if e.g == nil {
		return nil
	}
	if e.sim != nil {
		e.sim.SetCenter(vp.Center())
		if e.interval == 0 {
			e.sim.Settle(0)
		}
		return nil
	}
	_, err := e.active.Apply(e.g, vp)
	return err
}

// Stop halts any running simulation.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.sim != nil {
		e.sim.Stop()
		e.sim = nil
	}
}

// Name returns the active variant name.
func (e *Engine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active.Name()
}

// Simulation returns the running simulation, or nil for static variants.
func (e *Engine) Simulation() *Simulation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp
}

// Params returns the parameters new variants are built with.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// View calls fn with the current graph while no layout can write to it.
// fn receives nil when no graph has been applied.
func (e *Engine) View(fn func(g *graph.Graph)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sim != nil {
		e.sim.View(fn)
		return
	}
	fn(e.g)
}

// SetCharge updates the repulsion magnitude for the running simulation and
// for future force layouts.
func (e *Engine) SetCharge(c float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Force.Charge = c
	e.retuneLocked(func(s *Simulation) { s.SetCharge(c) })
}

// SetGravity updates the center pull for the running simulation and for
// future force layouts.
func (e *Engine) SetGravity(g float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Force.Gravity = g
	e.retuneLocked(func(s *Simulation) { s.SetGravity(g) })
}

func (e *Engine) retuneLocked(fn func(*Simulation)) {
	if e.active.Name() == NameForce {
		e.active = NewForce(e.params.Force)
	}
	if e.sim == nil {
		return
	}
	fn(e.sim)
	if e.interval == 0 {
		e.sim.Settle(0)
	}
}

// =============================================================================
// Dragging
// =============================================================================

// DragStart begins dragging node id. With a simulation the node is pinned and
// the simulation kept warm; static layouts need no preparation.
func (e *Engine) DragStart(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sim != nil {
		return e.sim.DragStart(id)
	}
	_, err := e.nodeLocked(id)
	return err
}

// Drag moves node id to (x, y).
func (e *Engine) Drag(id int, x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sim != nil {
		return e.sim.Drag(id, x, y)
	}
	n, err := e.nodeLocked(id)
	if err != nil {
		return err
	}
	n.X, n.Y = x, y
	return nil
}

// DragEnd releases node id.
func (e *Engine) DragEnd(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sim != nil {
		err := e.sim.DragEnd(id)
		if err == nil && e.interval == 0 {
			e.sim.Settle(0)
		}
		return err
	}
	_, err := e.nodeLocked(id)
	return err
}

func (e *Engine) nodeLocked(id int) (*graph.Node, error) {
	if e.g == nil {
		return nil, errors.New(errors.ErrCodeNoGraph, "no graph loaded")
	}
	n, ok := e.g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	return n, nil
}
