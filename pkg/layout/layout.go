package layout

import (
	"sort"
	"time"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

// Variant names.
const (
	NameForce  = "force"
	NameRadial = "radial"
)

// DefaultName is the variant applied to a freshly built graph.
const DefaultName = NameForce

// Layout places the nodes of a graph inside a viewport.
//
// Static variants return a nil Simulation. Iterative variants return a
// Simulation that has been seeded but not started; the caller decides whether
// to settle it synchronously or start it ticking.
type Layout interface {
	Name() string
	Apply(g *graph.Graph, vp Viewport) (*Simulation, error)
}

// Viewport is the drawing area the layout fills.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the viewport.
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}

// Params configures every variant.
type Params struct {
	Force ForceParams
}

// ForceParams tunes the force simulation.
type ForceParams struct {
	LinkDistance  float64       `mapstructure:"link_distance" toml:"link_distance"`
	Charge        float64       `mapstructure:"charge" toml:"charge"` // repulsion magnitude
	Gravity       float64       `mapstructure:"gravity" toml:"gravity"`
	CollideRadius float64       `mapstructure:"collide_radius" toml:"collide_radius"`
	Theta         float64       `mapstructure:"theta" toml:"theta"`
	AlphaMin      float64       `mapstructure:"alpha_min" toml:"alpha_min"`
	AlphaDecay    float64       `mapstructure:"alpha_decay" toml:"alpha_decay"`
	VelocityDecay float64       `mapstructure:"velocity_decay" toml:"velocity_decay"`
	TickInterval  time.Duration `mapstructure:"tick_interval" toml:"tick_interval"`
	MaxTicks      int           `mapstructure:"max_ticks" toml:"max_ticks"`
	Seed          int64         `mapstructure:"seed" toml:"seed"`
}

// Defaults for ForceParams.
const (
	DefaultLinkDistance  = 100.0
	DefaultCharge        = 1000.0
	DefaultGravity       = 0.1
	DefaultCollideRadius = 30.0
	DefaultTheta         = 0.9
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultTickInterval  = 16 * time.Millisecond
	DefaultMaxTicks      = 1000
)

// DefaultAlphaDecay cools alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - pow(DefaultAlphaMin, 1.0/300)

// DefaultParams returns the standard parameters for every variant.
func DefaultParams() Params {
	var p Params
	p.Force.SetDefaults()
	return p
}

// SetDefaults fills zero fields with their defaults. Charge and Gravity may
// legitimately be zero, so they are only filled on params that have not been
// configured at all (LinkDistance still zero).
func (p *ForceParams) SetDefaults() {
	if p.LinkDistance == 0 {
		p.LinkDistance = DefaultLinkDistance
		if p.Charge == 0 {
			p.Charge = DefaultCharge
		}
		if p.Gravity == 0 {
			p.Gravity = DefaultGravity
		}
	}
	if p.CollideRadius == 0 {
		p.CollideRadius = DefaultCollideRadius
	}
	if p.Theta == 0 {
		p.Theta = DefaultTheta
	}
	if p.AlphaMin == 0 {
		p.AlphaMin = DefaultAlphaMin
	}
	if p.AlphaDecay == 0 {
		p.AlphaDecay = 1 - pow(p.AlphaMin, 1.0/300)
	}
	if p.VelocityDecay == 0 {
		p.VelocityDecay = DefaultVelocityDecay
	}
	if p.TickInterval == 0 {
		p.TickInterval = DefaultTickInterval
	}
	if p.MaxTicks == 0 {
		p.MaxTicks = DefaultMaxTicks
	}
}

// =============================================================================
// Registry
// =============================================================================

var registry = map[string]func(Params) Layout{
	NameForce:  func(p Params) Layout { return NewForce(p.Force) },
	NameRadial: func(Params) Layout { return NewRadial() },
}

// New returns the variant registered under name.
func New(name string, p Params) (Layout, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q (must be one of: %v)", name, Names())
	}
	return ctor(p), nil
}

// Names lists the registered variants in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Valid reports whether name is a registered variant.
func Valid(name string) bool {
	_, ok := registry[name]
	return ok
}
