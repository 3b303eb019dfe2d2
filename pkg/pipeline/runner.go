package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/domgraph/pkg/cache"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/observability"
	"github.com/matzehuels/domgraph/pkg/render"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner may serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs build → layout → render for a tag-grouped payload.
func (r *Runner) Execute(ctx context.Context, groups graph.TagGroups, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Build
	start := time.Now()
	g, hit, err := r.BuildWithCacheInfo(ctx, groups, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Stats.BuildTime = time.Since(start)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.LinkCount = len(g.Links)
	result.CacheInfo.BuildHit = hit
	if data, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}
	r.Logger.Info("built graph",
		"tags", len(groups),
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	start = time.Now()
	positioned, info, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = positioned
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Ticks = info.Ticks
	result.Stats.Communities = info.Communities
	result.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout",
		"layout", opts.Layout,
		"ticks", info.Ticks,
		"duration", result.Stats.LayoutTime)

	fo, err := FrameOptions(positioned, opts)
	if err != nil {
		return nil, err
	}
	result.Frame = render.BuildFrame(positioned, fo)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, positioned, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"scope", opts.Scope,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the graph for groups, reporting whether it was
// served from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, groups graph.TagGroups, opts Options) (*graph.Graph, bool, error) {
	payload, err := json.Marshal(groups)
	if err != nil {
		return nil, false, fmt.Errorf("hash payload: %w", err)
	}
	key := r.Keyer.GraphKey(cache.Hash(payload))

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, "graph", key); ok {
			if g, err := graph.UnmarshalGraph(data); err == nil {
				return g, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(groups))
	start := time.Now()
	g, err := graph.Build(groups)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnBuildComplete(ctx, len(g.Nodes), time.Since(start), nil)

	if data, err := graph.MarshalGraph(g); err == nil {
		r.store(ctx, "graph", key, data, cache.GraphTTL)
	}
	return g, false, nil
}

// Build is BuildWithCacheInfo without the cache hit.
func (r *Runner) Build(ctx context.Context, groups graph.TagGroups, opts Options) (*graph.Graph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, groups, opts)
	return g, err
}

// LayoutInfo describes a computed layout.
type LayoutInfo struct {
	Ticks       int `json:"ticks"`
	Communities int `json:"communities"`
}

type cachedLayout struct {
	Graph json.RawMessage `json:"graph"`
	Info  LayoutInfo      `json:"info"`
}

// LayoutWithCacheInfo positions a copy of g, reporting whether the result
// was served from the cache. g itself is never modified.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, LayoutInfo, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, LayoutInfo{}, false, err
	}
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, LayoutInfo{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, "layout", key); ok {
			var c cachedLayout
			if err := json.Unmarshal(data, &c); err == nil {
				if positioned, err := graph.UnmarshalGraph(c.Graph); err == nil {
					return positioned, c.Info, true, nil
				}
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Layout, len(g.Nodes))
	start := time.Now()
	positioned, ticks, communities, err := Layout(g, opts)
	hooks.OnLayoutComplete(ctx, opts.Layout, ticks, time.Since(start), err)
	if err != nil {
		return nil, LayoutInfo{}, false, err
	}
	info := LayoutInfo{Ticks: ticks, Communities: communities}

	if data, err := graph.MarshalGraph(positioned); err == nil {
		if entry, err := json.Marshal(cachedLayout{Graph: data, Info: info}); err == nil {
			r.store(ctx, "layout", key, entry, cache.LayoutTTL)
		}
	}
	return positioned, info, false, nil
}

// RenderWithCacheInfo renders every requested format of a positioned graph.
// The hit result is true only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]export.Download, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	layoutHash := cache.Hash(graphData)

	artifacts := make(map[string][]export.Download, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.lookup(ctx, "artifact", key); ok {
				var downloads []export.Download
				if err := json.Unmarshal(data, &downloads); err == nil {
					artifacts[format] = downloads
					continue
				}
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, g, sub)
	hooks.OnExportComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, downloads := range rendered {
		artifacts[format] = downloads
		if data, err := json.Marshal(downloads); err == nil {
			r.store(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.ArtifactTTL)
		}
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
