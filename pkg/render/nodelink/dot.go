package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/render"
	"github.com/matzehuels/stackbuilder/pkg/spacing"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the layer id and the matching spacing rule to labels.
	// When false, nodes show only their kind and edges only the offset.
	Detailed bool
}

var fillColors = map[layer.Kind]string{
	layer.TopImage:    "#3a2e2b",
	layer.BottomImage: "#3a2e2b",
	layer.LabelImage:  "#f4efe6",
}

// ToDOT converts a stack to Graphviz DOT format. Each layer is a node and
// each pair of neighbours is joined by an edge labelled with the offset
// between them. The last layer gets a dangling edge to an "end" point when
// its trailing offset is not zero.
func ToDOT(s stack.Stack, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=16];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("\n")

	for i, l := range s.All() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(fmtAttrs(l, opts.Detailed), ", "))
	}

	if s.Len() > 0 {
		buf.WriteString("\n")
	}
	for i, l := range s.All() {
		next, ok := s.NextKind(i)
		off, rule := spacing.Explain(l.Kind, next, ok)
		label := fmt.Sprintf("%+d", off)
		if opts.Detailed {
			label += "\n" + rule.String()
		}
		switch {
		case ok:
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(i), nodeID(i+1), label)
		case off != 0:
			buf.WriteString("  \"end\" [shape=point];\n")
			fmt.Fprintf(&buf, "  %q -> \"end\" [label=%q, style=dashed];\n", nodeID(i), label)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "L" + strconv.Itoa(i) }

func fmtAttrs(l layer.Layer, detailed bool) []string {
	label := l.Kind.String()
	if detailed {
		label += "\n" + l.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch l.Kind {
	case layer.Spacer:
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=gray40")
	case layer.LabelImage:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fillColors[l.Kind]))
	default:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fillColors[l.Kind]), "fontcolor=white")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
