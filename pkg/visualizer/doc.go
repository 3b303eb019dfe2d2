// Package visualizer holds the state of one interactive graph view.
//
// A [Controller] owns everything a view mutates: the graph built from the
// latest payload, the layout engine and its simulation, the selection, the
// search query, the pan/zoom transform and the community decoration flag.
// Callers drive it with UI events and read it back as render frames or
// exports. All methods are safe for concurrent use.
//
// Loading a payload replaces the whole state. The previous simulation is
// stopped before the new graph is laid out, and the selection, search and
// transform start over:
//
//	c := visualizer.New(visualizer.WithLive(16 * time.Millisecond))
//	defer c.Close()
//	if _, err := c.VisualizeJSON(ctx, groups); err != nil {
//	    return err
//	}
//	c.SetSearch("nav")
//	frame := c.Frame()
package visualizer
