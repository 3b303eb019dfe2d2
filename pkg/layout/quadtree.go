package layout

import (
	"math"

	"github.com/matzehuels/domgraph/pkg/graph"
)

const maxQuadDepth = 32

// quad is a Barnes-Hut cell. Leaves hold point indices; every cell caches the
// number of points below it and their center of mass.
type quad struct {
	x0, y0, x1, y1 float64
	children       [4]*quad
	points         []int
	count          int
	cx, cy         float64
}

func (q *quad) leaf() bool {
	return q.children == [4]*quad{}
}

func (q *quad) contains(x, y float64) bool {
	return x >= q.x0 && x <= q.x1 && y >= q.y0 && y <= q.y1
}

func buildQuadtree(nodes []*graph.Node) *quad {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		x0, y0 = math.Min(x0, n.X), math.Min(y0, n.Y)
		x1, y1 = math.Max(x1, n.X), math.Max(y1, n.Y)
	}
	side := math.Max(math.Max(x1-x0, y1-y0), 1)
	root := &quad{x0: x0, y0: y0, x1: x0 + side, y1: y0 + side}
	for i := range nodes {
		root.insert(nodes, i, 0)
	}
	root.accumulate(nodes)
	return root
}

func (q *quad) insert(nodes []*graph.Node, i, depth int) {
	if q.leaf() {
		if len(q.points) == 0 || depth >= maxQuadDepth {
			q.points = append(q.points, i)
			return
		}
		// Split and push the existing points down.
		existing := q.points
		q.points = nil
		for _, j := range existing {
			q.child(nodes[j]).insert(nodes, j, depth+1)
		}
	}
	q.child(nodes[i]).insert(nodes, i, depth+1)
}

func (q *quad) child(n *graph.Node) *quad {
	mx, my := (q.x0+q.x1)/2, (q.y0+q.y1)/2
	idx := 0
	if n.X >= mx {
		idx |= 1
	}
	if n.Y >= my {
		idx |= 2
	}
	if q.children[idx] == nil {
		c := &quad{x0: q.x0, y0: q.y0, x1: mx, y1: my}
		if idx&1 != 0 {
			c.x0, c.x1 = mx, q.x1
		}
		if idx&2 != 0 {
			c.y0, c.y1 = my, q.y1
		}
		q.children[idx] = c
	}
	return q.children[idx]
}

func (q *quad) accumulate(nodes []*graph.Node) {
	var sx, sy float64
	q.count = 0
	if q.leaf() {
		for _, i := range q.points {
			sx += nodes[i].X
			sy += nodes[i].Y
		}
		q.count = len(q.points)
	} else {
		for _, c := range q.children {
			if c == nil {
				continue
			}
			c.accumulate(nodes)
			sx += c.cx * float64(c.count)
			sy += c.cy * float64(c.count)
			q.count += c.count
		}
	}
	if q.count > 0 {
		q.cx, q.cy = sx/float64(q.count), sy/float64(q.count)
	}
}
