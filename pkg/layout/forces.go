package layout

import "math"

// distanceMin2 keeps repulsion finite for nearly coincident nodes.
const distanceMin2 = 1.0

// applyLinks pulls linked nodes toward LinkDistance. Each link corrects the
// endpoint with fewer links more strongly.
func (s *Simulation) applyLinks() {
	nodes := s.g.Nodes
	for _, l := range s.links {
		src, dst := nodes[l.source], nodes[l.target]
		vs, vt := &s.vel[l.source], &s.vel[l.target]

		x := dst.X + vt.x - src.X - vs.x
		if x == 0 {
			x = s.jiggle.next()
		}
		y := dst.Y + vt.y - src.Y - vs.y
		if y == 0 {
			y = s.jiggle.next()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - s.params.LinkDistance) / d * s.alpha * l.strength
		x, y = x*k, y*k

		vt.x -= x * l.bias
		vt.y -= y * l.bias
		vs.x += x * (1 - l.bias)
		vs.y += y * (1 - l.bias)
	}
}

// applyCharge repels every pair of nodes with strength -Charge, approximating
// distant groups by their center of mass.
func (s *Simulation) applyCharge() {
	if s.params.Charge == 0 || len(s.g.Nodes) < 2 {
		return
	}
	tree := buildQuadtree(s.g.Nodes)
	strength := -s.params.Charge
	theta2 := s.params.Theta * s.params.Theta
	for i, n := range s.g.Nodes {
		s.chargeFrom(tree, i, n.X, n.Y, strength, theta2)
	}
}

func (s *Simulation) chargeFrom(q *quad, i int, x, y, strength, theta2 float64) {
	if q == nil || q.count == 0 {
		return
	}
	v := &s.vel[i]
	dx, dy := q.cx-x, q.cy-y
	w := q.x1 - q.x0
	l := dx*dx + dy*dy

	if !q.leaf() && !q.contains(x, y) && w*w/theta2 < l {
		s.repel(v, dx, dy, l, strength*float64(q.count))
		return
	}
	if q.leaf() {
		for _, j := range q.points {
			if j == i {
				continue
			}
			o := s.g.Nodes[j]
			dx, dy := o.X-x, o.Y-y
			if dx == 0 {
				dx = s.jiggle.next()
			}
			if dy == 0 {
				dy = s.jiggle.next()
			}
			s.repel(v, dx, dy, dx*dx+dy*dy, strength)
		}
		return
	}
	for _, c := range q.children {
		s.chargeFrom(c, i, x, y, strength, theta2)
	}
}

func (s *Simulation) repel(v *vec, dx, dy, l, strength float64) {
	if l < distanceMin2 {
		l = math.Sqrt(distanceMin2 * l)
	}
	if l == 0 {
		return
	}
	w := strength * s.alpha / l
	v.x += dx * w
	v.y += dy * w
}

// applyGravity pulls free nodes toward the center in proportion to their
// distance from it.
func (s *Simulation) applyGravity() {
	k := s.params.Gravity * s.alpha
	if k == 0 {
		return
	}
	for i, n := range s.g.Nodes {
		s.vel[i].x += (s.cx - n.X) * k
		s.vel[i].y += (s.cy - n.Y) * k
	}
}

// applyCenter translates all nodes so their mean sits on the center.
func (s *Simulation) applyCenter() {
	if len(s.g.Nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range s.g.Nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(s.g.Nodes)) - s.cx
	sy = sy/float64(len(s.g.Nodes)) - s.cy
	for _, n := range s.g.Nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// applyCollide pushes apart nodes closer than twice CollideRadius, using a
// uniform grid so only nearby pairs are compared.
func (s *Simulation) applyCollide() {
	r := s.params.CollideRadius
	if r <= 0 || len(s.g.Nodes) < 2 {
		return
	}
	type cell struct{ x, y int }
	size := 2 * r
	predicted := make([]vec, len(s.g.Nodes))
	grid := make(map[cell][]int)
	for i, n := range s.g.Nodes {
		p := vec{n.X + s.vel[i].x, n.Y + s.vel[i].y}
		predicted[i] = p
		c := cell{int(math.Floor(p.x / size)), int(math.Floor(p.y / size))}
		grid[c] = append(grid[c], i)
	}

	rr := size * size
	for i, p := range predicted {
		c := cell{int(math.Floor(p.x / size)), int(math.Floor(p.y / size))}
		for gx := c.x - 1; gx <= c.x+1; gx++ {
			for gy := c.y - 1; gy <= c.y+1; gy++ {
				for _, j := range grid[cell{gx, gy}] {
					if j <= i {
						continue
					}
					q := predicted[j]
					x, y := p.x-q.x, p.y-q.y
					l := x*x + y*y
					if l >= rr {
						continue
					}
					if x == 0 {
						x = s.jiggle.next()
						l += x * x
					}
					if y == 0 {
						y = s.jiggle.next()
						l += y * y
					}
					d := math.Sqrt(l)
					k := (size - d) / d
					x, y = x*k*0.5, y*k*0.5
					s.vel[i].x += x
					s.vel[i].y += y
					s.vel[j].x -= x
					s.vel[j].y -= y
				}
			}
		}
	}
}
