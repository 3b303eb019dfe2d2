package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/extract"
)

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract [page.html]",
		Short: "Extract tag-grouped elements from an HTML page",
		Long: `Extract tag-grouped elements from an HTML page.

Every element inside <body> is grouped by its lower-case tag name, in
document order, together with its attributes and collapsed inner text. The
result is the tag-groups payload consumed by 'build', 'render' and the
visualizer API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.tags.json, - for stdout)")
	return cmd
}

func (c *CLI) runExtract(input, output string) error {
	prog := newProgress(c.Logger)
	groups, err := extract.FromFile(input)
	if err != nil {
		return err
	}
	data, err := groups.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode tag groups: %w", err)
	}

	if output == "-" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}
	if output == "" {
		output = outputBase(input) + ".tags.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Extracted %d tags", len(groups)))

	printSuccess("Extracted %d tags, %d elements", len(groups), groups.ElementCount())
	printFile(output)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}
