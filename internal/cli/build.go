package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "build [tags.json|page.html]",
		Short: "Build the containment graph from a tag-groups payload",
		Long: `Build the containment graph from a tag-groups payload.

The graph has one root node ("document"), one node per tag and one node per
element, linked document → tag → element. Node ids follow payload order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input, output string, noCache bool) error {
	groups, err := loadTagGroups(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, groups, c.defaultOptions())
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase(input) + ".graph.json"
	}
	if err := graph.WriteGraphFile(g, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Graph built")
	printFile(output)
	printStats(len(g.Nodes), len(g.Links), cacheHit)
	printNewline()
	printNextStep("Lay out", appName+" layout "+input)
	return nil
}
