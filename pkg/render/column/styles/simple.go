package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stackbuilder/pkg/layer"
)

// Simple draws flat, filled shapes: dark wafers for the two image layers, a
// cream filling for labels and an invisible spacer with a faint ampersand.
type Simple struct{}

var _ Style = Simple{}

type palette struct {
	fill, stroke, text string
	radius             float64
}

var simplePalette = map[layer.Kind]palette{
	layer.TopImage:    {fill: "#2b2220", stroke: "#120d0c", text: "#f4efe6", radius: 80},
	layer.BottomImage: {fill: "#3a2e2b", stroke: "#120d0c", text: "#f4efe6", radius: 80},
	layer.LabelImage:  {fill: "#f4efe6", stroke: "#cfc6b8", text: "#3a2e2b", radius: 64},
	layer.Spacer:      {fill: "none", stroke: "none", text: "#9a9a9a"},
}

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <filter id="shadow" x="-10%" y="-10%" width="120%" height="130%"><feDropShadow dx="0" dy="4" stdDeviation="4" flood-opacity="0.3"/></filter>` + "\n")
	buf.WriteString("  </defs>\n")
}

func (Simple) RenderBlock(buf *bytes.Buffer, b Block) {
	p := simplePalette[b.Kind]
	if b.Kind == layer.Spacer {
		renderText(buf, b, 48, p.text)
		return
	}
	ry := min(p.radius, b.H/2)
	fmt.Fprintf(buf, `  <rect id="block-%s" class="block block-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="%s" stroke="%s" stroke-width="2" filter="url(#shadow)"/>`+"\n",
		EscapeXML(b.ID), b.Kind, b.X, b.Y, b.W, b.H, b.W/2, ry, p.fill, p.stroke)
	renderText(buf, b, 28, p.text)
}
