// Package cache stores derived artifacts (graphs, layouts, rendered files)
// keyed by content hashes, so repeated runs over the same payload skip work.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything.
//   - [FileCache] keeps entries on disk for CLI usage.
//   - [RedisCache] shares entries between server instances.
//
// Keys are produced by a [Keyer]; [ScopedKeyer] prefixes them per tenant.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live per artifact kind.
const (
	GraphTTL    = 7 * 24 * time.Hour
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Layout  string  `json:"layout"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Charge  float64 `json:"charge,omitempty"`
	Gravity float64 `json:"gravity,omitempty"`
	Ticks   int     `json:"ticks,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Scope  string `json:"scope,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// GraphKey addresses the graph built from a raw payload.
	GraphKey(payloadHash string) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes stage options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unprefixed keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) GraphKey(payloadHash string) string {
	return "graph:" + payloadHash
}

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
