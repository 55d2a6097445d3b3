// Package pipeline provides the layout → render pipeline for stateflow.
//
// This package implements the path from a diagram document to rendered
// artifacts that is shared by the CLI and the HTTP server. By centralizing
// it, both entry points cache and log in the same way.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: position actors, flows and steps ([layout.Compute])
//  2. Render: produce output in one or more formats (SVG, JSON, PNG, DOT)
//
// Layout results are cached by the hash of the diagram record and the layout
// geometry; artifacts are cached by the hash of the layout and the render
// options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Render(ctx, d, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Legend:  true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// [layout.Compute]: github.com/matzehuels/stateflow/pkg/layout.Compute
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stateflow/pkg/cache"
	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// DefaultStyle is the default visual style.
	DefaultStyle = StyleSimple
)

// Styles.
const (
	StyleSimple = "simple"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatDOT:  true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple: true,
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout layout.Config `json:"layout"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Legend  bool     `json:"legend,omitempty"`
	// Focus is the id of the flow to highlight.
	Focus string `json:"focus,omitempty"`
	// Scale is the PNG pixel density.
	Scale float64 `json:"scale,omitempty"`
	// Detailed lists step captions on DOT edges.
	Detailed bool `json:"detailed,omitempty"`
	Refresh  bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DocHash is the content hash of the diagram record.
	DocHash string

	// Layout is the computed geometry.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Actors     int
	Steps      int
	Skipped    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, png, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple)", style)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the render options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills a zero layout configuration with the standard geometry.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for a layout configuration.
func LayoutKeyOpts(cfg layout.Config) cache.LayoutKeyOpts {
	data, _ := json.Marshal(cfg)
	return cache.LayoutKeyOpts{
		ActorWidth:   cfg.ActorWidth,
		ActorGap:     cfg.ActorGap,
		StepHeight:   cfg.StepHeight,
		StartY:       cfg.StartY,
		FlowGap:      cfg.FlowGap,
		MultiFlowGap: cfg.MultiFlowGap,
		Geometry:     cache.Hash(data),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that a format ignores are left out so that, for example, a JSON
// artifact is shared between renders with different PNG scales.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Focus: o.Focus}
	switch format {
	case FormatSVG:
		k.Style, k.Legend = o.Style, o.Legend
	case FormatPNG:
		k.Legend, k.Scale = o.Legend, o.Scale
	case FormatDOT:
		k.Focus, k.Detailed = "", o.Detailed
	}
	return k
}
