// Package nodelink renders a layer stack as a Graphviz node-link diagram.
//
// Each layer becomes a box and consecutive layers are joined by an arrow
// labelled with the spacing offset between them. This view makes the
// spacing table easy to audit: overlaps show up as negative edge labels.
//
//	dot := nodelink.ToDOT(s, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses goccy/go-graphviz, a WebAssembly build of Graphviz, so no
// system installation is needed for SVG. PDF and PNG go through
// rsvg-convert like the column view.
package nodelink
