package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/pipeline"
)

// renderTarget says where rendered downloads go.
type renderTarget struct {
	dir       string
	clipboard bool
	stdout    bool
}

func (t renderTarget) sink() export.Sink {
	switch {
	case t.clipboard:
		return export.ClipboardSink{}
	case t.stdout:
		return export.WriterSink{W: stdout}
	}
	return export.DirSink{Dir: t.dir}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		selectID   int
		target     renderTarget
		noCache    bool
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "render [tags.json|page.html]",
		Short: "Build, lay out and export a payload in one step",
		Long: `Build, lay out and export a payload in one step.

Formats: ` + strings.Join(export.FormatNames(), ", ") + `.

The scope picks what is exported: the full graph, the nodes matching
--query (filtered), or the node chosen with --select and its neighbors
(connected). --query and --select also dim the non-matching parts of
rendered images.

Every stage is cached; only the formats missing from the cache are rendered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := c.resolveOptions(cmd, opts)
			if fs := parseFormats(formatsStr); len(fs) > 0 {
				run.Formats = fs
			}
			if cmd.Flags().Changed("scope") {
				run.Scope = opts.Scope
			}
			run.Query = opts.Query
			if cmd.Flags().Changed("select") {
				run.Select = &selectID
			}
			if err := run.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if target.dir == "" {
				target.dir = c.config().Export.Dir
			}
			return c.runRender(cmd.Context(), args[0], run, target, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated (default: "+strings.Join(opts.Formats, ",")+")")
	cmd.Flags().StringVar(&opts.Scope, "scope", opts.Scope, "export scope: full, filtered, connected")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search query")
	cmd.Flags().IntVar(&selectID, "select", 0, "selected node id")
	cmd.Flags().StringVarP(&target.dir, "output", "o", "", "output directory (default: export.dir from config)")
	cmd.Flags().BoolVar(&target.clipboard, "clipboard", false, "copy text output to the clipboard instead of writing files")
	cmd.Flags().BoolVar(&target.stdout, "stdout", false, "write output to stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.MarkFlagsMutuallyExclusive("clipboard", "stdout")
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, target renderTarget, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := c.renderOnce(ctx, runner, input, opts, target)
	if err != nil {
		return err
	}
	if target.stdout {
		return nil
	}

	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.RenderHit, opts.Layout)
	return nil
}

// renderOnce runs the pipeline for input and delivers every artifact.
func (c *CLI) renderOnce(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, target renderTarget) (*pipeline.Result, error) {
	groups, err := loadTagGroups(input)
	if err != nil {
		return nil, err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()
	result, err := runner.Execute(ctx, groups, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, err
	}
	spinner.Stop()

	sink := target.sink()
	for _, format := range opts.Formats {
		downloads := result.Artifacts[format]
		if err := export.DeliverAll(ctx, sink, downloads); err != nil {
			return nil, err
		}
		if target.stdout {
			continue
		}
		for _, d := range downloads {
			if target.clipboard {
				printSuccess("Copied %s to the clipboard", d.Filename)
			} else {
				printFile(filepath.Join(target.dir, d.Filename))
			}
		}
	}
	c.Logger.Debug("render timings",
		"build", result.Stats.BuildTime, "layout", result.Stats.LayoutTime, "render", result.Stats.RenderTime)
	return result, nil
}
