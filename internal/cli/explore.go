package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/visualizer"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [tags.json|page.html]",
		Short: "Search and select nodes interactively",
		Long: `Search and select nodes interactively.

The payload is loaded into a visualizer and shown as a list. Typing filters
it with the same case-insensitive search the visualizer uses; enter selects
a node and highlights the nodes connected to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runExplore(ctx context.Context, input string) error {
	groups, err := loadTagGroups(input)
	if err != nil {
		return err
	}

	ctrl := visualizer.New(visualizer.WithLogger(c.Logger))
	defer ctrl.Close()
	if _, err := ctrl.VisualizeJSON(ctx, groups); err != nil {
		return err
	}

	p := tea.NewProgram(NewExploreModel(ctrl), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	if m, ok := final.(ExploreModel); ok {
		if id, ok := ctrl.Selected(); ok {
			printInfo("Selected node %d (%d connected)", id, len(m.Connected)-1)
		}
	}
	return nil
}
