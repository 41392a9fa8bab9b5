package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/column/styles"
)

const blockInteractionCSS = `
    .block { transition: stroke-width 0.2s ease; }
    .block.highlight { stroke-width: 4; }
    .block-text { pointer-events: none; }`

const blockInteractionJS = `
    document.querySelectorAll('.block').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	background  string
	interactive bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithInteraction adds hover highlighting. Only useful when the SVG is
// embedded in a browser page.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws the layout. Blocks are painted in [layout.Layout.DrawOrder]
// so that earlier layers cover later ones where they overlap.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.FrameWidth, l.FrameHeight, l.FrameWidth, l.FrameHeight)

	r.style.RenderDefs(&buf)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.EscapeXML(r.background))
	}
	for _, b := range l.DrawOrder() {
		r.style.RenderBlock(&buf, toStyleBlock(b))
	}
	if r.interactive {
		renderBlockInteraction(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderBlockInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", blockInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", blockInteractionJS)
}

func toStyleBlock(b layout.Block) styles.Block {
	return styles.Block{
		ID:     b.ID,
		Kind:   b.Kind,
		Index:  b.Index,
		X:      b.Left,
		Y:      b.Top,
		W:      b.Width(),
		H:      b.Height(),
		CX:     b.CenterX(),
		CY:     b.CenterY(),
		Offset: int(b.Offset),
	}
}
