package layout

import (
	"math"
	"sync"
	"time"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

// Drag reheat target, as in d3's drag examples.
const dragAlphaTarget = 0.3

type vec struct{ x, y float64 }

type linkRef struct {
	source, target int // node indices
	bias, strength float64
}

// Simulation is the state of a running force layout: alpha, velocities and
// force parameters. It is safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	g      *graph.Graph
	params ForceParams
	cx, cy float64

	alpha       float64
	alphaTarget float64
	ticks       int

	vel    []vec
	index  map[int]int
	links  []linkRef
	jiggle *jiggler

	// Live ticking. quit and done are nil unless Start has been called.
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
	notify   chan struct{}
}

func newSimulation(g *graph.Graph, p ForceParams, cx, cy float64) *Simulation {
	s := &Simulation{
		g:      g,
		params: p,
		cx:     cx,
		cy:     cy,
		alpha:  1,
		vel:    make([]vec, len(g.Nodes)),
		index:  make(map[int]int, len(g.Nodes)),
		jiggle: newJiggler(p.Seed),
		notify: make(chan struct{}, 1),
	}
	for i, n := range g.Nodes {
		s.index[n.ID] = i
	}
	placeUnplaced(g.Nodes, cx, cy)
	s.initLinks()
	return s
}

func (s *Simulation) initLinks() {
	count := make([]int, len(s.g.Nodes))
	s.links = s.links[:0]
	for _, l := range s.g.Links {
		si, ok1 := s.index[l.Source]
		ti, ok2 := s.index[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		count[si]++
		count[ti]++
		s.links = append(s.links, linkRef{source: si, target: ti})
	}
	for i := range s.links {
		l := &s.links[i]
		cs, ct := float64(count[l.source]), float64(count[l.target])
		l.bias = cs / (cs + ct)
		l.strength = 1 / min(cs, ct)
	}
}

// =============================================================================
// Stepping
// =============================================================================

// Tick advances the simulation by one step and reports whether it has cooled.
func (s *Simulation) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
	return s.cooled()
}

// Settle ticks synchronously until the simulation cools or maxTicks steps
// have run (0 means the configured MaxTicks). It returns the number of ticks.
func (s *Simulation) Settle(maxTicks int) int {
	if maxTicks <= 0 {
		maxTicks = s.params.MaxTicks
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for n < maxTicks && !s.cooled() {
		s.step()
		n++
	}
	return n
}

func (s *Simulation) cooled() bool {
	return s.alpha < s.params.AlphaMin
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay
	s.ticks++

	s.applyLinks()
	s.applyCharge()
	s.applyGravity()
	s.applyCollide()
	s.applyCenter()

	decay := 1 - s.params.VelocityDecay
	for i, n := range s.g.Nodes {
		v := &s.vel[i]
		if n.FX != nil {
			n.X, v.x = *n.FX, 0
		} else {
			v.x *= decay
			n.X += v.x
		}
		if n.FY != nil {
			n.Y, v.y = *n.FY, 0
		} else {
			v.y *= decay
			n.Y += v.y
		}
	}
}

// =============================================================================
// Live ticking
// =============================================================================

// Start ticks the simulation on a new goroutine every interval until it cools
// or Stop is called. Starting a running simulation is a no-op.
func (s *Simulation) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval <= 0 {
		interval = s.params.TickInterval
	}
	s.interval = interval
	s.startLocked()
}

func (s *Simulation) startLocked() {
	if s.interval == 0 || s.runningLocked() {
		return
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.interval, s.quit, s.done)
}

func (s *Simulation) run(interval time.Duration, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}
		s.mu.Lock()
		s.step()
		cooled := s.cooled()
		s.mu.Unlock()

		select {
		case s.notify <- struct{}{}:
		default:
		}
		if cooled {
			return
		}
	}
}

// Stop halts live ticking and returns once the ticking goroutine has exited.
// A stopped simulation is not restarted by later reheats.
func (s *Simulation) Stop() {
	s.mu.Lock()
	quit, done := s.quit, s.done
	s.quit, s.done = nil, nil
	s.interval = 0
	s.mu.Unlock()

	if quit == nil {
		return
	}
	close(quit)
	<-done
}

// Running reports whether the ticking goroutine is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Simulation) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Ticks delivers a notification after each live tick. Notifications coalesce;
// a slow reader sees at most one pending.
func (s *Simulation) Ticks() <-chan struct{} { return s.notify }

// =============================================================================
// State access
// =============================================================================

// View calls fn with the graph while holding the simulation lock.
func (s *Simulation) View(fn func(g *graph.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.g)
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// TickCount returns the number of steps taken so far.
func (s *Simulation) TickCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Params returns the current force parameters.
func (s *Simulation) Params() ForceParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Reheat raises alpha to at least a and resumes live ticking.
func (s *Simulation) Reheat(a float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reheatLocked(a)
}

func (s *Simulation) reheatLocked(a float64) {
	s.alpha = math.Max(s.alpha, a)
	s.startLocked()
}

// SetAlphaTarget sets the temperature alpha decays toward.
func (s *Simulation) SetAlphaTarget(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alphaTarget = t
	if t > 0 {
		s.startLocked()
	}
}

// SetCharge changes the repulsion magnitude and reheats.
func (s *Simulation) SetCharge(c float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Charge = c
	s.reheatLocked(dragAlphaTarget)
}

// SetGravity changes the center pull strength and reheats.
func (s *Simulation) SetGravity(g float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Gravity = g
	s.reheatLocked(dragAlphaTarget)
}

// SetCenter moves the centering target without touching velocities.
func (s *Simulation) SetCenter(cx, cy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cx, s.cy = cx, cy
	s.reheatLocked(dragAlphaTarget)
}

// Center returns the centering target.
func (s *Simulation) Center() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cx, s.cy
}

// =============================================================================
// Dragging
// =============================================================================

// DragStart pins node id at its current position and keeps the simulation warm.
func (s *Simulation) DragStart(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	n.Pin(n.X, n.Y)
	s.alphaTarget = dragAlphaTarget
	s.reheatLocked(dragAlphaTarget)
	return nil
}

// Drag moves the pin of node id.
func (s *Simulation) Drag(id int, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	return nil
}

// DragEnd releases node id and lets the simulation cool.
func (s *Simulation) DragEnd(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	n.Unpin()
	s.alphaTarget = 0
	return nil
}

func (s *Simulation) nodeLocked(id int) (*graph.Node, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	return s.g.Nodes[i], nil
}
