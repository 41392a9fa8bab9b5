package styles

import (
	"bytes"
	"fmt"
)

// Wire draws outlines only and annotates every block with its index and the
// offset applied after it. Useful when tuning spacing.
type Wire struct{}

var _ Style = Wire{}

func (Wire) Name() string { return "wire" }

func (Wire) RenderDefs(*bytes.Buffer) {}

func (Wire) RenderBlock(buf *bytes.Buffer, b Block) {
	fmt.Fprintf(buf, `  <rect id="block-%s" class="block block-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#333" stroke-dasharray="4 3"/>`+"\n",
		EscapeXML(b.ID), b.Kind, b.X, b.Y, b.W, b.H)
	renderText(buf, b, 16, "#333")
	fmt.Fprintf(buf, `  <text class="block-offset" x="%.2f" y="%.2f" font-family="monospace" font-size="11" fill="#c0392b">#%d %+d</text>`+"\n",
		b.X+b.W+4, b.Y+b.H, b.Index, b.Offset)
}
