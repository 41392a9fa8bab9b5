package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbuilder/pkg/cache"
	"github.com/matzehuels/stackbuilder/pkg/observability"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/nodelink"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the server both use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{}

	buildStart := time.Now()
	s, actions, err := Build(opts)
	if err != nil {
		return nil, err
	}
	result.Stack = s
	result.StackHash = StackHash(s)
	result.Stats.Actions = len(actions)
	result.Stats.Layers = s.Len()
	result.Stats.BuildTime = time.Since(buildStart)

	opts.Logger.Info("built stack",
		"actions", len(actions),
		"layers", s.Len(),
		"duration", result.Stats.BuildTime)

	if opts.IsNodelink() {
		result.DOT = nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed})
	} else {
		result.Layout = layout.Build(s, opts.LayoutOptions())
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo generates artifacts for s with caching and reports
// whether every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s stack.Stack, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats, s.Len())
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	}()

	hash := StackHash(s)

	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, hash, opts); ok {
			opts.Logger.Debug("artifacts from cache", "formats", opts.Formats)
			return cached, true, nil
		}
	}

	rendered, err := Render(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s stack.Stack, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

// lookup returns cached artifacts only when every format is present.
func (r *Runner) lookup(ctx context.Context, hash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

// StackHash returns the content hash of s, covering layer ids and kinds.
func StackHash(s stack.Stack) string {
	data, err := s.MarshalJSON()
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
