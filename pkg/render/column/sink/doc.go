// Package sink provides output format renderers for column layouts.
//
// A "sink" transforms a computed [layout.Layout] into a final output format:
//
//   - SVG: the column as drawn in the browser, earlier layers on top
//   - JSON: block positions, z-order and offsets for external tools
//   - PDF and PNG: SVG converted with rsvg-convert
//   - Term: a coloured terminal preview built with lipgloss
//
// Basic usage:
//
//	l := layout.Build(s, layout.Options{})
//	svg := sink.RenderSVG(l, sink.WithStyle(styles.Wire{}))
//	png, err := sink.RenderPNG(ctx, l, sink.WithScale(2))
//
// [layout.Layout]: github.com/matzehuels/stackbuilder/pkg/render/column/layout.Layout
package sink
