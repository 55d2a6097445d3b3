package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // svg, json, png, dot
	style    string   // visual style
	legend   bool     // draw the actor-type legend
	focus    string   // flow id to highlight
	scale    float64  // PNG pixel density
	detailed bool     // list step captions on DOT edges
	noCache  bool     // bypass the cache entirely
	refresh  bool     // recompute and overwrite cached entries
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		style: pipeline.DefaultStyle,
		scale: pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render <id|file>",
		Short: "Render a diagram to SVG, PNG, JSON, or DOT",
		Long: `Render lays out a stored diagram (or a JSON/YAML document on disk) as a
sequence diagram and writes one file per requested format.

With a single format, -o names the output file ("-" writes to stdout).
With several formats, -o is a base path and each format adds its extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.style); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "-o - requires exactly one format")
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.style, "style", opts.style, "visual style: simple")
	cmd.Flags().BoolVar(&opts.legend, "legend", false, "draw the actor-type legend")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "highlight the flow with this id")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list step captions on DOT edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout and render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached layouts and artifacts")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, ref string, opts renderOpts) error {
	d, err := c.loadDiagram(ctx, ref)
	if err != nil {
		return err
	}
	if opts.focus != "" && !hasFlow(d, opts.focus) {
		printWarning("Flow %q not found, rendering without focus", opts.focus)
		opts.focus = ""
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", d.Name))
	spin.Start()

	result, err := runner.Render(ctx, d, pipeline.Options{
		Layout:   c.cfg.Layout,
		Formats:  opts.formats,
		Style:    opts.style,
		Legend:   opts.legend,
		Focus:    opts.focus,
		Scale:    opts.scale,
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
	})
	spin.Stop()
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := out.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	paths := outputPaths(opts.output, d.ID, opts.formats)
	for _, f := range opts.formats {
		if err := writeArtifact(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(opts.formats), "artifact")))

	printSuccess("Rendered %s", StyleHighlight.Render(d.Name))
	printStats(result.Stats.Actors, result.Stats.Steps, result.Stats.Skipped, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	for _, f := range opts.formats {
		printFile(paths[f])
	}
	if result.Stats.Skipped > 0 {
		printNewline()
		printNextStep("See why steps were skipped", fmt.Sprintf("%s check %s", appName, ref))
	}
	return nil
}

func hasFlow(d *model.Diagram, id string) bool {
	return slices.ContainsFunc(d.Flows, func(f model.Flow) bool { return f.ID == id })
}

// outputPaths maps each format to its file. A single format with an
// explicit output uses it verbatim; otherwise the output (or the diagram
// id) is a base path, minus any format extension, to which each format
// extension is added.
func outputPaths(output, id string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = id
	}
	if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
