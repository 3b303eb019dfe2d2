package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/internal/server"
	"github.com/matzehuels/domgraph/pkg/session"
	"github.com/matzehuels/domgraph/pkg/visualizer"
)

// liveTick is the simulation interval for served sessions (about 60 fps).
const liveTick = 16 * time.Millisecond

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		open string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the visualizer HTTP API",
		Long: `Run the visualizer HTTP API.

POST /api/visualizer opens the visualizer (or focuses the open one) and
POST /api/visualize sends it a tag-groups payload. Layout, search, forces,
selection, viewport, drag, frame and export endpoints live under
/api/visualizer/{id}.

With --open the visualizer is created at startup and loaded with the given
file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config().Server.Addr
			}
			return c.runServe(cmd.Context(), addr, open, ttl)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().StringVar(&open, "open", "", "payload (tags.json or page.html) to load at startup")
	cmd.Flags().DurationVar(&ttl, "session-ttl", session.DefaultTTL, "close visualizers idle for this long")

	return cmd
}

// newController builds a visualizer from the loaded config.
func (c *CLI) newController() *visualizer.Controller {
	cfg := c.config()
	opts := []visualizer.Option{
		visualizer.WithParams(cfg.LayoutParams()),
		visualizer.WithLayout(cfg.Layout.Default),
		visualizer.WithSize(cfg.Layout.Width, cfg.Layout.Height),
		visualizer.WithLive(liveTick),
		visualizer.WithLogger(c.Logger),
	}
	if cfg.Community.Enabled {
		opts = append(opts, visualizer.WithCommunity(cfg.Community.Resolution))
	}
	return visualizer.New(opts...)
}

func (c *CLI) runServe(ctx context.Context, addr, open string, ttl time.Duration) error {
	store := session.NewMemoryStore(c.newController, ttl)
	srv := server.New(server.Config{Addr: addr, Logger: c.Logger}, store)

	if open != "" {
		groups, err := loadTagGroups(open)
		if err != nil {
			return err
		}
		sess, _, err := store.Open(ctx)
		if err != nil {
			return err
		}
		summary, err := sess.Controller.VisualizeJSON(ctx, groups)
		if err != nil {
			return err
		}
		printSuccess("Loaded %s", open)
		printKeyValue("visualizer", sess.ID)
		printStats(summary.Nodes, summary.Links, false, summary.Layout)
	}

	printInfo("Serving on %s", StyleHighlight.Render("http://"+addr))
	return srv.ListenAndServe(ctx)
}
