// Package layout positions graph nodes in a viewport.
//
// Two variants implement [Layout]:
//
//   - [ForceLayout]: an iterative d3-force style simulation with link springs,
//     many-body repulsion, a centering force, a gravity pull toward the center
//     and collision avoidance. Running it returns a [Simulation].
//   - [RadialLayout]: an analytic placement of each level on a concentric ring.
//
// Variants are looked up by name with [New]; an unknown name fails with
// errors.ErrCodeUnknownLayout.
//
// # Engine
//
// [Engine] owns the single active variant and at most one running simulation.
// Every operation that replaces the graph or the variant stops the previous
// simulation synchronously before touching node positions:
//
//	eng := layout.NewEngine(layout.DefaultParams(), layout.WithLive(16*time.Millisecond))
//	eng.Apply(g, layout.Viewport{Width: 800, Height: 600})
//	eng.Use(layout.NameRadial) // force simulation stopped first
//
// # Concurrency
//
// A live simulation ticks on its own goroutine and is the only writer of X/Y
// while it runs. Read positions through [Simulation.View] (or [Engine.View])
// and move nodes with the drag methods, which take the simulation lock.
package layout
