package sink

import (
	"encoding/json"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
}

// WithJSONStyle records the style name in the JSON output.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

type jsonOutput struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Margin float64     `json:"margin"`
	Style  string      `json:"style,omitempty"`
	Blocks []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	ID     string     `json:"id"`
	Kind   layer.Kind `json:"kind"`
	Index  int        `json:"index"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Z      int        `json:"z"`
	Offset int        `json:"offset"`
}

// RenderJSON exports the positioned blocks, in stack order, as a
// pretty-printed JSON document.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  l.FrameWidth,
		Height: l.FrameHeight,
		Margin: l.Margin,
		Style:  r.style,
		Blocks: make([]jsonBlock, 0, len(l.Blocks)),
	}
	for _, b := range l.Blocks {
		out.Blocks = append(out.Blocks, jsonBlock{
			ID:     b.ID,
			Kind:   b.Kind,
			Index:  b.Index,
			X:      b.Left,
			Y:      b.Top,
			Width:  b.Width(),
			Height: b.Height(),
			Z:      b.Z,
			Offset: int(b.Offset),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
