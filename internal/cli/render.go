package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/pipeline"
	"github.com/matzehuels/tablespan/pkg/render/text"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	input    inputFlags
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	border   string // border glyph set
	align    string // horizontal alignment inside cells
	minWidth int    // minimum column width
	padding  int    // spaces between content and vertical borders
	strict   bool   // require content for every label
	noCache  bool   // bypass the render cache
	refresh  bool   // re-render and overwrite cached artifacts
}

// renderCommand creates the render command.
//
// A single text or json output goes to stdout unless --output is given;
// xlsx output and multiple formats are written to files named after the
// input.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		minWidth: text.DefaultMinWidth,
		padding:  text.DefaultPadding,
	}

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a table as text, JSON layout or xlsx",
		Long: `Render a table described by a document file:

  {
    "spans":   {"A": [2, 1]},
    "table":   [["A", "B"], ["C", "D"]],
    "content": {"A": "Totals"}
  }

or by --spans/--table/--content. Labels without content display themselves.`,
		Example: `  tablespan render report.json
  tablespan render report.json -f text,xlsx -o out/report
  tablespan render --table '[["A", "B"]]' --spans '{"A": [1, 2]}' --border rounded`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), json, xlsx (comma-separated)")
	cmd.Flags().StringVar(&opts.border, "border", text.DefaultBorder, "border style: "+strings.Join(text.BorderNames(), ", "))
	cmd.Flags().StringVar(&opts.align, "align", text.DefaultAlign, "alignment: left, center, right")
	cmd.Flags().IntVar(&opts.minWidth, "min-width", opts.minWidth, "minimum column width")
	cmd.Flags().IntVar(&opts.padding, "padding", opts.padding, "spaces between content and borders")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a label has no content")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render and overwrite cached output")

	return cmd
}

// pipelineOptions merges flags, config defaults and built-in defaults.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts *renderOpts) (pipeline.Options, error) {
	minWidth, padding := opts.minWidth, opts.padding
	po := pipeline.Options{
		Formats:  parseFormats(opts.formats),
		Border:   opts.border,
		Align:    opts.align,
		MinWidth: &minWidth,
		Padding:  &padding,
		Strict:   opts.strict,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	}
	c.config.Render.apply(&po, cmd.Flags())
	if err := po.ValidateAndSetDefaults(); err != nil {
		return po, err
	}
	return po, nil
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	po, err := c.pipelineOptions(cmd, opts)
	if err != nil {
		return err
	}
	in, base, err := loadInput(args, opts.input, c.In)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, in, po)
	if err != nil {
		return err
	}
	prog.done("Rendered table", "rows", result.Stats.Rows, "cols", result.Stats.Cols, "cached", result.CacheInfo.RenderHit)

	return c.writeArtifacts(ctx, result, po.Formats, base, opts.output)
}

// writeArtifacts prints a lone text or json artifact to stdout, and writes
// every other artifact to a file named after base.
func (c *CLI) writeArtifacts(ctx context.Context, result *pipeline.Result, formats []string, base, output string) error {
	ui := c.ui()

	if len(formats) == 1 && formats[0] != pipeline.FormatXLSX && output == "" {
		_, err := c.Out.Write(artifactBytes(formats[0], result.Artifacts[formats[0]]))
		return err
	}

	var paths []string
	for _, format := range formats {
		path := outputPath(output, base, format, len(formats))
		if err := writeFile(path, artifactBytes(format, result.Artifacts[format])); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	ui.success("Rendered %d output(s)", len(paths))
	ui.stats(result.Stats.Rows, result.Stats.Cols, result.Stats.Cells, result.CacheInfo.RenderHit)
	for _, p := range paths {
		ui.file(p)
	}
	return ctx.Err()
}

// artifactBytes terminates the compact JSON layout with a newline.
func artifactBytes(format string, data []byte) []byte {
	if format == pipeline.FormatJSON {
		return append(data[:len(data):len(data)], '\n')
	}
	return data
}

var formatExt = map[string]string{
	pipeline.FormatText: ".txt",
	pipeline.FormatJSON: ".json",
	pipeline.FormatXLSX: ".xlsx",
}

// outputPath names the file of one format. A single format honours output
// verbatim; with several formats output is a base path whose known
// extension is dropped.
func outputPath(output, base, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	if output != "" {
		base = output
		for _, ext := range formatExt {
			if strings.HasSuffix(base, ext) {
				base = strings.TrimSuffix(base, ext)
				break
			}
		}
	}
	return base + formatExt[format]
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
