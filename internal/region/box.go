// Package region models axis-aligned 3-D block volumes and partitions
// oversized volumes into chunks that stay within the server's practical
// per-command limits.
package region

import "fmt"

// Box is an inclusive axis-aligned block volume. Coordinates are normalized
// so X1 <= X2, Y1 <= Y2, Z1 <= Z2.
type Box struct {
	X1, Y1, Z1 int
	X2, Y2, Z2 int
}

// NewBox builds a Box from two corner points, normalizing corner order.
func NewBox(x1, y1, z1, x2, y2, z2 int) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if z1 > z2 {
		z1, z2 = z2, z1
	}
	return Box{X1: x1, Y1: y1, Z1: z1, X2: x2, Y2: y2, Z2: z2}
}

// SpanX returns the number of blocks the box covers along the X axis.
func (b Box) SpanX() int { return b.X2 - b.X1 + 1 }

// SpanY returns the number of blocks the box covers along the Y axis.
func (b Box) SpanY() int { return b.Y2 - b.Y1 + 1 }

// SpanZ returns the number of blocks the box covers along the Z axis.
func (b Box) SpanZ() int { return b.Z2 - b.Z1 + 1 }

// Volume returns the total number of blocks in the box.
func (b Box) Volume() int {
	return b.SpanX() * b.SpanY() * b.SpanZ()
}

// FitsWithin reports whether every dimension of the box is at most maxEdge
// blocks long.
func (b Box) FitsWithin(maxEdge int) bool {
	return b.SpanX() <= maxEdge && b.SpanY() <= maxEdge && b.SpanZ() <= maxEdge
}

// Contains reports whether the point (x, y, z) lies inside the box.
func (b Box) Contains(x, y, z int) bool {
	return x >= b.X1 && x <= b.X2 &&
		y >= b.Y1 && y <= b.Y2 &&
		z >= b.Z1 && z <= b.Z2
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d)..(%d,%d,%d)", b.X1, b.Y1, b.Z1, b.X2, b.Y2, b.Z2)
}
