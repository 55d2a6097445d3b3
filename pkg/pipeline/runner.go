package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stateflow/pkg/cache"
	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
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

// DocHash returns the content hash of d's serialized record.
func DocHash(d *model.Diagram) (string, error) {
	data, err := io.MarshalRecord(d)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram")
	}
	return cache.Hash(data), nil
}

// Layout computes the layout of d with caching and reports whether it came
// from the cache. A zero cfg uses the default geometry.
func (r *Runner) Layout(ctx context.Context, d *model.Diagram, cfg layout.Config) (layout.Layout, bool, error) {
	l, _, hit, err := r.layout(ctx, d, cfg, false)
	return l, hit, err
}

// layout also returns the diagram's content hash so callers do not hash the
// record a second time.
func (r *Runner) layout(ctx context.Context, d *model.Diagram, cfg layout.Config, refresh bool) (layout.Layout, string, bool, error) {
	if d == nil {
		return layout.Layout{}, "", false, errors.New(errors.ErrCodeInvalidInput, "diagram is required")
	}
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}

	docHash, err := DocHash(d)
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	cacheKey := r.Keyer.LayoutKey(docHash, LayoutKeyOpts(cfg))

	// Try cache first (unless refresh requested)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, docHash, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, d.ID, len(d.Actors), d.TotalSteps())
	l := layout.Compute(d, layout.WithConfig(cfg))
	observability.Pipeline().OnLayoutComplete(ctx, d.ID, time.Since(start), nil)

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			r.Logger.Debug("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, docHash, false, nil
}

// Render lays out d and produces the requested artifacts, using the cache
// for both stages.
func (r *Runner) Render(ctx context.Context, d *model.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Layout
	layoutStart := time.Now()
	l, docHash, layoutHit, err := r.layout(ctx, d, opts.Layout, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.DocHash = docHash
	result.Layout = l
	result.Stats = Stats{
		Actors:     len(d.Actors),
		Steps:      len(l.Edges),
		Skipped:    len(l.Skipped),
		LayoutTime: time.Since(layoutStart),
	}
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"actors", result.Stats.Actors,
		"steps", result.Stats.Steps,
		"skipped", result.Stats.Skipped,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)
	for _, s := range l.Skipped {
		logger.Debug("skipped step", "flow", s.FlowID, "step", s.StepID, "reason", s.Reason)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.render(ctx, l, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// render generates artifacts with caching and reports whether all of them
// came from the cache.
func (r *Runner) render(ctx context.Context, l layout.Layout, d *model.Diagram, opts Options) (map[string][]byte, bool, error) {
	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	// The JSON artifact embeds the diagram identity, so it is part of the key.
	layoutHash := cache.Hash(append(layoutData, []byte(d.ID+"\x00"+d.Name)...))

	artifacts := make(map[string][]byte)
	seen := make(map[string]bool)
	var missing []string
	for _, format := range opts.Formats {
		if seen[format] {
			continue
		}
		seen[format] = true
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, missing)
	rendered, err := RenderFromLayout(l, d, withFormats(opts, missing))
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

func withFormats(opts Options, formats []string) Options {
	opts.Formats = formats
	return opts
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
