package sim

import "math"

// Force model constants. Values are tuned together; changing one without
// the others makes the layout drift or jitter.
const (
	friction         = 0.975
	charge           = 0.14
	attraction       = 0.00008
	collisionPadding = 14.0
	bounceDamping    = -0.15
)

// Step advances every node one frame: a weak pull toward the center of
// the bounds, pairwise overlap repulsion, velocity integration with
// friction, and damped wall bounces that keep each circle fully inside.
func Step(nodes []*Node, b Bounds) {
	cx := b.Width / 2
	cy := b.Height / 2

	for i, n := range nodes {
		n.VX += (cx - n.X) * attraction
		n.VY += (cy - n.Y) * attraction

		for j := i + 1; j < len(nodes); j++ {
			m := nodes[j]
			dx := m.X - n.X
			dy := m.Y - n.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			minDist := n.Radius + m.Radius + collisionPadding
			if dist >= minDist || dist == 0 {
				continue
			}
			force := (minDist - dist) / dist * charge
			fx := dx * force
			fy := dy * force
			n.VX -= fx
			n.VY -= fy
			m.VX += fx
			m.VY += fy
		}

		n.X += n.VX
		n.Y += n.VY
		n.VX *= friction
		n.VY *= friction

		if n.X < n.Radius {
			n.X = n.Radius
			n.VX *= bounceDamping
		} else if n.X > b.Width-n.Radius {
			n.X = b.Width - n.Radius
			n.VX *= bounceDamping
		}
		if n.Y < n.Radius {
			n.Y = n.Radius
			n.VY *= bounceDamping
		} else if n.Y > b.Height-n.Radius {
			n.Y = b.Height - n.Radius
			n.VY *= bounceDamping
		}
	}
}
