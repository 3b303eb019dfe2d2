package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/domgraph/pkg/community"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
)

// Layout positions a copy of g with the configured variant. A force layout
// is settled synchronously; the tick count is returned (0 for radial).
// Community groups are assigned afterwards when opts.Community is set.
func Layout(g *graph.Graph, opts Options) (*graph.Graph, int, int, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, 0, 0, err
	}
	l, err := layout.New(opts.Layout, layout.Params{Force: opts.Force})
	if err != nil {
		return nil, 0, 0, err
	}

	out := g.Clone()
	sim, err := l.Apply(out, opts.Viewport())
	if err != nil {
		return nil, 0, 0, err
	}
	ticks := 0
	if sim != nil {
		ticks = sim.Settle(opts.Force.MaxTicks)
	}

	communities := 0
	if opts.Community {
		communities = community.Decorate(out, opts.Resolution)
	}
	return out, ticks, communities, nil
}

// FrameOptions returns the interaction state opts describes for g. An
// out-of-range Select is reported as NODE_NOT_FOUND.
func FrameOptions(g *graph.Graph, opts Options) (render.FrameOptions, error) {
	fo := render.FrameOptions{Viewport: opts.Viewport()}
	if opts.Query != "" {
		fo.Search = search.New(opts.Query)
	}
	if opts.Select != nil {
		sel := &selection.Model{}
		if _, err := sel.Select(g, *opts.Select); err != nil {
			return fo, err
		}
		fo.Selection = sel
	}
	return fo, nil
}

// Render encodes every requested format concurrently. g must already be
// positioned.
func Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]export.Download, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	fo, err := FrameOptions(g, opts)
	if err != nil {
		return nil, err
	}
	scope, _ := export.ParseScope(opts.Scope)
	src := export.NewSource(g, scope, fo)

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]export.Download, len(opts.Formats))
	)
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		eg.Go(func() error {
			downloads, err := export.Encode(ctx, format, src)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = downloads
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
