// Package pipeline turns a list of stack actions into rendered artifacts.
//
// This package implements the build → layout → render pipeline shared by
// the render command and the browser server, so both produce identical
// bytes for identical input.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: fold parsed actions into a [stack.Stack] through a [stack.Store]
//  2. Layout: position the layers (column view) or emit DOT (node-link view)
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Actions: []string{"top", "label", "bottom"},
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Render an existing stack:
//
//	artifacts, err := runner.Render(ctx, store.State(), opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbuilder/pkg/cache"
	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/column/styles"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the minimum frame width in pixels.
	DefaultWidth = layout.DefaultWidth

	// DefaultMargin surrounds the column on every side.
	DefaultMargin = layout.DefaultMargin

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultStyle is the default visual style.
	DefaultStyle = styles.Default

	// IDPrefix prefixes the deterministic layer ids of built stacks.
	IDPrefix = "layer"
)

// Visualization types.
const (
	VizTypeColumn   = "column"
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeColumn

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats per visualization type.
var ValidFormats = map[string][]string{
	VizTypeColumn:   {FormatSVG, FormatPNG, FormatPDF, FormatJSON},
	VizTypeNodelink: {FormatSVG, FormatPNG, FormatPDF, FormatDOT},
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Build options
	Actions   []string `json:"actions,omitempty"`
	Script    string   `json:"script,omitempty"` // whitespace/comma separated, '#' comments
	MaxLayers int      `json:"max_layers,omitempty"`

	// Layout options
	VizType string  `json:"viz_type,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Margin  float64 `json:"margin,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`    // node-link labels carry ids and rules
	Interactive bool     `json:"interactive,omitempty"` // column SVG gets hover highlighting
	Refresh     bool     `json:"refresh,omitempty"`     // skip cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Stack is the built stack.
	Stack stack.Stack

	// StackHash is the content hash of the stack.
	StackHash string

	// Layout is the column layout. Empty for node-link renders.
	Layout layout.Layout

	// DOT is the node-link source. Empty for column renders.
	DOT string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Actions    int
	Layers     int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if _, ok := ValidFormats[vizType]; !ok {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz type: %q (must be one of: column, nodelink)", vizType)
	}
	return nil
}

// ValidateFormat checks that format can be produced for vizType.
func ValidateFormat(vizType, format string) error {
	valid, ok := ValidFormats[vizType]
	if !ok {
		return ValidateVizType(vizType)
	}
	if !slices.Contains(valid, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format for %s: %q (must be one of: %s)", vizType, format, strings.Join(valid, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid for vizType.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is registered.
func ValidateStyle(style string) error {
	_, err := styles.ByName(style)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero values. It is idempotent.
func (o *Options) SetDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
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

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	if o.Width < 0 || o.Margin < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width, margin and scale must not be negative")
	}
	return ValidateStyle(o.Style)
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutOptions returns the column layout options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Width: o.Width, Margin: o.Margin}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		VizType: o.VizType,
		Format:  format,
	}
	if o.IsNodelink() {
		k.Detailed = o.Detailed
	} else {
		k.Style = o.Style
		k.Width = o.Width
		k.Margin = o.Margin
		k.Interactive = o.Interactive && format == FormatSVG
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
