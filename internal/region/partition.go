package region

import "fmt"

// DefaultMaxEdge is the largest chunk edge length used when the caller does
// not override it. Vanilla servers handle /fill volumes up to 32768 blocks;
// a 32-block cube stays comfortably under that.
const DefaultMaxEdge = 32

// Chunk is one partition of a larger volume plus the fill payload. One chunk
// maps to exactly one fill command.
type Chunk struct {
	Box     Box
	Block   string
	Replace string // optional replace filter, empty means unconditional fill
}

// FillCommand renders the chunk as a server fill command.
func (c Chunk) FillCommand() string {
	b := c.Box
	cmd := fmt.Sprintf("fill %d %d %d %d %d %d %s",
		b.X1, b.Y1, b.Z1, b.X2, b.Y2, b.Z2, c.Block)
	if c.Replace != "" {
		cmd += " replace " + c.Replace
	}
	return cmd
}

// Partition splits box into chunks no larger than maxEdge on any axis.
// A box that already fits within maxEdge comes back as a single chunk equal
// to the input. Otherwise each axis is tiled independently at maxEdge width
// with the final tile taking the remainder. The returned chunks cover the
// input exactly: no gaps, no overlaps.
func Partition(box Box, maxEdge int, block, replace string) []Chunk {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if box.FitsWithin(maxEdge) {
		return []Chunk{{Box: box, Block: block, Replace: replace}}
	}

	var chunks []Chunk
	for x := box.X1; x <= box.X2; x += maxEdge {
		x2 := min(x+maxEdge-1, box.X2)
		for y := box.Y1; y <= box.Y2; y += maxEdge {
			y2 := min(y+maxEdge-1, box.Y2)
			for z := box.Z1; z <= box.Z2; z += maxEdge {
				z2 := min(z+maxEdge-1, box.Z2)
				chunks = append(chunks, Chunk{
					Box:     Box{X1: x, Y1: y, Z1: z, X2: x2, Y2: y2, Z2: z2},
					Block:   block,
					Replace: replace,
				})
			}
		}
	}
	return chunks
}
