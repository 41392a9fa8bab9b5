// Package styles draws the four layer variants of a column as SVG.
package styles

import (
	"bytes"
	"slices"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
)

// Style defines the visual appearance for column rendering.
type Style interface {
	// Name is the identifier accepted by [ByName].
	Name() string
	// RenderDefs writes SVG <defs> content (filters, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBlock writes the SVG for a single layer.
	RenderBlock(buf *bytes.Buffer, b Block)
}

// Block contains all data needed to render a single layer.
type Block struct {
	ID         string     // Layer identifier
	Kind       layer.Kind // Visual variant
	Index      int        // Position in the stack
	X, Y, W, H float64    // Top-left corner and dimensions
	CX, CY     float64    // Center coordinates
	Offset     int        // Spacing applied after this layer
}

// Default is the style used when none is configured.
const Default = "simple"

var registry = map[string]func() Style{
	"simple": func() Style { return Simple{} },
	"wire":   func() Style { return Wire{} },
}

// Names lists the registered styles in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ByName returns the style registered under name. An empty name selects
// [Default].
func ByName(name string) (Style, error) {
	if name == "" {
		name = Default
	}
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (available: %v)", name, Names())
}
