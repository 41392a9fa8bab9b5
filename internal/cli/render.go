package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/pipeline"
)

// defaultOutputBase names output files when -o is not given.
const defaultOutputBase = "stack"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	script   string   // script file, "-" for stdin
	output   string   // output file (single output), base path (several), "-" for stdout
	vizTypes []string // column, nodelink
	formats  []string // svg, png, pdf, json, dot
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var vizTypesStr, formatsStr string
	var opts renderOpts
	var p pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [action...]",
		Short: "Build a stack from actions and render it",
		Long: `Build a stack by applying actions in order and render the result.

Actions are layer kinds (top, bottom, label or re, spacer or &) which append
a layer, or remove-head and remove-tail. Scripts hold the same tokens
separated by whitespace or commas; '#' starts a comment.`,
		Example: `  stackbuilder render top label bottom
  stackbuilder render --script oreo.txt -f svg,png -o oreo
  echo "top re & bottom" | stackbuilder render --script - -o - -f json
  stackbuilder render top label bottom -t nodelink -f dot -o -`,
		ValidArgsFunction: completeActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.Config.PipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("type") {
				opts.vizTypes = splitList(vizTypesStr)
			} else {
				opts.vizTypes = []string{merged.VizType}
			}
			if flags.Changed("format") {
				merged.Formats = splitList(formatsStr)
			}
			if flags.Changed("style") {
				merged.Style = p.Style
			}
			if flags.Changed("width") {
				merged.Width = p.Width
			}
			if flags.Changed("margin") {
				merged.Margin = p.Margin
			}
			if flags.Changed("scale") {
				merged.Scale = p.Scale
			}
			if flags.Changed("max-layers") {
				merged.MaxLayers = p.MaxLayers
			}
			merged.Detailed = p.Detailed
			merged.Refresh = p.Refresh
			merged.Actions = args
			opts.formats = merged.Formats

			if opts.script != "" {
				script, err := readScript(opts.script, cmd.InOrStdin())
				if err != nil {
					return err
				}
				merged.Script = script
			}
			if opts.output != "" && opts.output != "-" {
				if err := errors.ValidateOutputPath(opts.output); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), merged, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "read actions from a file ('-' for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path for several outputs, or '-' for stdout")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): column, nodelink (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, pdf, json (column), dot (nodelink)")
	cmd.Flags().StringVar(&p.Style, "style", "", "column style: simple, wire")
	cmd.Flags().Float64Var(&p.Width, "width", 0, "minimum frame width")
	cmd.Flags().Float64Var(&p.Margin, "margin", 0, "margin around the column")
	cmd.Flags().Float64Var(&p.Scale, "scale", 0, "PNG scale factor")
	cmd.Flags().IntVar(&p.MaxLayers, "max-layers", 0, "cap the number of layers (0 = unbounded)")
	cmd.Flags().BoolVar(&p.Detailed, "detailed", false, "label node-link edges with the spacing rule")
	cmd.Flags().BoolVar(&p.Refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readScript(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read script %s", path)
	}
	return string(data), nil
}

// basePath strips a known format extension from output, or falls back to
// defaultOutputBase.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if isFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func isFormat(s string) bool {
	for _, formats := range pipeline.ValidFormats {
		if slices.Contains(formats, s) {
			return true
		}
	}
	return false
}

// outputPath names the file for one (type, format) output.
func outputPath(output, vizType, format string, single, multiType bool) string {
	if single && output != "" {
		return output
	}
	base := basePath(output)
	if multiType {
		base += "_" + vizType
	}
	return base + "." + format
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, base pipeline.Options, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	total := len(opts.vizTypes) * len(opts.formats)
	if opts.output == "-" && total != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "-o - needs exactly one type and one format, got %d outputs", total)
	}

	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	written := 0
	for _, vizType := range opts.vizTypes {
		p := base
		p.VizType = vizType
		p.Formats = opts.formats
		p.Logger = logger

		result, err := c.execute(ctx, runner, p)
		if err != nil {
			return err
		}

		if opts.output == "-" {
			_, err := stdout.Write(result.Artifacts[opts.formats[0]])
			return err
		}

		for _, format := range opts.formats {
			path := outputPath(opts.output, vizType, format, total == 1, len(opts.vizTypes) > 1)
			if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
			}
			printFile(path)
			written++
		}
		printStats(result.Stats.Actions, result.Stats.Layers, result.CacheInfo.RenderHit)
	}

	prog.done(fmt.Sprintf("Rendered %d file(s)", written))
	return nil
}

// execute runs the pipeline, with a spinner when a slow converter is involved.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, p pipeline.Options) (*pipeline.Result, error) {
	slow := slices.Contains(p.Formats, pipeline.FormatPNG) || slices.Contains(p.Formats, pipeline.FormatPDF)
	if !slow {
		return runner.Execute(ctx, p)
	}
	sp := newSpinner(ctx, "Rendering "+p.VizType+"...")
	sp.Start()
	defer sp.Stop()
	return runner.Execute(ctx, p)
}
