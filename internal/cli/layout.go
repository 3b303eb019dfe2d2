package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/pipeline"
)

// addLayoutFlags registers the flags shared by every command that lays out
// a graph.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Layout, "layout", "l", opts.Layout, "layout: "+strings.Join(layout.Names(), ", "))
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "canvas width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "canvas height")
	cmd.Flags().Float64Var(&opts.Force.Charge, "charge", opts.Force.Charge, "node repulsion (force)")
	cmd.Flags().Float64Var(&opts.Force.Gravity, "gravity", opts.Force.Gravity, "pull toward the center (force)")
	cmd.Flags().BoolVar(&opts.Community, "community", opts.Community, "color nodes by detected community")
	cmd.Flags().Float64Var(&opts.Resolution, "resolution", opts.Resolution, "community detection resolution")
}

// resolveOptions starts from the configured defaults and applies only the
// flags that were set on the command line.
func (c *CLI) resolveOptions(cmd *cobra.Command, flagged pipeline.Options) pipeline.Options {
	opts := c.defaultOptions()
	f := cmd.Flags()
	if f.Changed("layout") {
		opts.Layout = flagged.Layout
	}
	if f.Changed("width") {
		opts.Width = flagged.Width
	}
	if f.Changed("height") {
		opts.Height = flagged.Height
	}
	if f.Changed("charge") {
		opts.Force.Charge = flagged.Force.Charge
	}
	if f.Changed("gravity") {
		opts.Force.Gravity = flagged.Force.Gravity
	}
	if f.Changed("community") {
		opts.Community = flagged.Community
	}
	if f.Changed("resolution") {
		opts.Resolution = flagged.Resolution
	}
	opts.Refresh = flagged.Refresh
	return opts
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [tags.json|page.html]",
		Short: "Compute node positions for a payload",
		Long: `Compute node positions for a payload.

The force layout runs the simulation to rest; the radial layout places each
level on its own ring. The output is the graph JSON with x/y filled in.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := c.resolveOptions(cmd, opts)
			if err := run.ValidateForLayout(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], run, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	groups, err := loadTagGroups(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Build(ctx, groups, opts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout))
	spinner.Start()
	positioned, info, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = outputBase(input) + ".layout.json"
	}
	if err := graph.WriteGraphFile(positioned, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	var extra []string
	if info.Ticks > 0 {
		extra = append(extra, fmt.Sprintf("%d ticks", info.Ticks))
	}
	if info.Communities > 0 {
		extra = append(extra, fmt.Sprintf("%d communities", info.Communities))
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(positioned.Nodes), len(positioned.Links), cacheHit, extra...)
	printNewline()
	printNextStep("Render", appName+" render "+input+" --layout "+opts.Layout)
	return nil
}
