// Package render turns a layer stack into visual artifacts.
//
// Two views exist:
//
//   - [column]: the stack as it appears on screen, one block per layer with
//     spacing offsets applied (SVG, JSON, PNG, PDF and a terminal preview)
//   - [nodelink]: the layer chain as a Graphviz diagram, edges labelled with
//     the offset between neighbours
//
// [ToPDF] and [ToPNG] convert SVG from either view using the external
// rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(layout.Build(s, layout.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [column]: github.com/matzehuels/stackbuilder/pkg/render/column
// [nodelink]: github.com/matzehuels/stackbuilder/pkg/render/nodelink
package render
