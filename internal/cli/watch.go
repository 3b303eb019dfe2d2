package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/pipeline"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		formatsStr string
		target     renderTarget
		noCache    bool
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "watch [tags.json|page.html]",
		Short: "Re-render whenever the input file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := c.resolveOptions(cmd, opts)
			if fs := parseFormats(formatsStr); len(fs) > 0 {
				run.Formats = fs
			}
			run.Query = opts.Query
			if err := run.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if target.dir == "" {
				target.dir = c.config().Export.Dir
			}
			return c.runWatch(cmd.Context(), args[0], run, target, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search query")
	cmd.Flags().StringVarP(&target.dir, "output", "o", "", "output directory (default: export.dir from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, target renderTarget, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	render := func() {
		result, err := c.renderOnce(ctx, runner, input, opts, target)
		if err != nil {
			// Keep watching after a failed render.
			printWarning("%v", err)
			return
		}
		printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.RenderHit, time.Now().Format("15:04:05"))
	}

	render()
	printInfo("Watching %s (ctrl+c to stop)", input)
	err = watchFile(ctx, input, watchDebounce, render)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchFile calls onChange after path is written, created or renamed into
// place, once events have been quiet for debounce. It watches the parent
// directory so atomic saves are seen. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		case <-timer.C:
			onChange()
		}
	}
}
