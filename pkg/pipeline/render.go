package pipeline

import (
	"context"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/column/sink"
	"github.com/matzehuels/stackbuilder/pkg/render/column/styles"
	"github.com/matzehuels/stackbuilder/pkg/render/nodelink"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Render generates output artifacts in the requested formats. opts must
// already be validated.
func Render(ctx context.Context, s stack.Stack, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return RenderNodelink(ctx, nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed}), opts)
	}
	return RenderColumn(ctx, layout.Build(s, opts.LayoutOptions()), opts)
}

// RenderNodelink generates node-link outputs from DOT source.
func RenderNodelink(ctx context.Context, dot string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderColumn generates column outputs from a layout.
func RenderColumn(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			if opts.Interactive {
				data = sink.RenderSVG(l, append(svgOpts, sink.WithInteraction())...)
			} else {
				data = sink.RenderSVG(l, svgOpts...)
			}
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l, sink.WithJSONStyle(style.Name()))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported column format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
