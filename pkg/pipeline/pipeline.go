// Package pipeline runs the headless build → layout → render path shared by
// the CLI commands and the server's one-shot endpoints.
//
// Each stage can run on its own, and each is cached through a [cache.Cache]
// keyed by content hashes:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, groups, pipeline.Options{
//	    Layout:  "radial",
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"][0].Data
package pipeline

import (
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/domgraph/pkg/cache"
	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultWidth  = 960.0
	DefaultHeight = 720.0
)

// DefaultFormat is rendered when Options.Formats is empty.
const DefaultFormat = export.FormatSVG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Layout options
	Layout string             `json:"layout,omitempty"`
	Width  float64            `json:"width,omitempty"`
	Height float64            `json:"height,omitempty"`
	Force  layout.ForceParams `json:"-"`

	// Community decoration
	Community  bool    `json:"community,omitempty"`
	Resolution float64 `json:"resolution,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scope   string   `json:"scope,omitempty"`
	Query   string   `json:"query,omitempty"`  // search applied to the frame and the filtered scope
	Select  *int     `json:"select,omitempty"` // node whose connected set is highlighted

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Graph is the positioned graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the unpositioned graph.
	GraphHash string

	// Frame is the full-scope frame the artifacts were drawn from.
	Frame render.Frame

	// Artifacts holds the downloads per format.
	Artifacts map[string][]export.Download

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains execution statistics.
type Stats struct {
	NodeCount   int
	LinkCount   int
	Communities int
	Ticks       int
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	BuildHit  bool
	LayoutHit bool
	RenderHit bool // every requested format was cached
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults validates every stage and applies defaults.
// Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills the layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == "" {
		o.Layout = layout.DefaultName
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.Force.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and checks the variant and size.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if !layout.Valid(o.Layout) {
		return errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q (must be one of: %v)", o.Layout, layout.Names())
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size %gx%g must not be negative", o.Width, o.Height)
	}
	return nil
}

// SetRenderDefaults fills the render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scope == "" {
		o.Scope = string(export.ScopeFull)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and checks formats and scope.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if err := export.ValidateFormat(f); err != nil {
			return err
		}
	}
	_, err := export.ParseScope(o.Scope)
	return err
}

// Viewport returns the layout size.
func (o *Options) Viewport() layout.Viewport {
	return layout.Viewport{Width: o.Width, Height: o.Height}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{Layout: o.Layout, Width: o.Width, Height: o.Height}
	if o.Layout == layout.NameForce {
		k.Charge, k.Gravity, k.Ticks = o.Force.Charge, o.Force.Gravity, o.Force.MaxTicks
	}
	if o.Community {
		k.Layout += "+community:" + strconv.FormatFloat(o.Resolution, 'g', -1, 64)
	}
	return k
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Scope: o.Scope, Query: o.Query}
	if o.Select != nil {
		k.Scope += "@" + strconv.Itoa(*o.Select)
	}
	return k
}
