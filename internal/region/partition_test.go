package region

import (
	"strings"
	"testing"
)

func TestNewBoxNormalizesCorners(t *testing.T) {
	b := NewBox(10, 64, -5, -10, 60, 5)
	if b.X1 != -10 || b.X2 != 10 {
		t.Errorf("X not normalized: got %d..%d", b.X1, b.X2)
	}
	if b.Y1 != 60 || b.Y2 != 64 {
		t.Errorf("Y not normalized: got %d..%d", b.Y1, b.Y2)
	}
	if b.Z1 != -5 || b.Z2 != 5 {
		t.Errorf("Z not normalized: got %d..%d", b.Z1, b.Z2)
	}
}

func TestVolume(t *testing.T) {
	b := NewBox(0, 0, 0, 9, 4, 1)
	if got := b.Volume(); got != 100 {
		t.Errorf("Volume() = %d, want 100", got)
	}
}

func TestSmallRegionSingleChunk(t *testing.T) {
	b := NewBox(0, 60, 0, 31, 91, 31)
	chunks := Partition(b, 32, "air", "")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for region within maxEdge, got %d", len(chunks))
	}
	if chunks[0].Box != b {
		t.Errorf("single chunk %v does not equal input %v", chunks[0].Box, b)
	}
}

func TestPartitionCoversExactly(t *testing.T) {
	cases := []struct {
		name    string
		box     Box
		maxEdge int
	}{
		{"exact multiple", NewBox(0, 0, 0, 63, 31, 63), 32},
		{"remainder on every axis", NewBox(0, 0, 0, 69, 40, 33), 32},
		{"negative coordinates", NewBox(-50, -10, -50, 20, 5, 14), 32},
		{"tiny maxEdge", NewBox(0, 0, 0, 6, 6, 6), 3},
		{"single block", NewBox(5, 5, 5, 5, 5, 5), 32},
		{"one long axis", NewBox(0, 64, 0, 200, 64, 0), 32},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := Partition(tc.box, tc.maxEdge, "air", "")

			// Every point of the input must be covered by exactly one chunk.
			covered := make(map[[3]int]int)
			for _, c := range chunks {
				if c.Box.SpanX() > tc.maxEdge || c.Box.SpanY() > tc.maxEdge || c.Box.SpanZ() > tc.maxEdge {
					t.Errorf("chunk %v exceeds maxEdge %d", c.Box, tc.maxEdge)
				}
				for x := c.Box.X1; x <= c.Box.X2; x++ {
					for y := c.Box.Y1; y <= c.Box.Y2; y++ {
						for z := c.Box.Z1; z <= c.Box.Z2; z++ {
							covered[[3]int{x, y, z}]++
						}
					}
				}
			}

			want := tc.box.Volume()
			if len(covered) != want {
				t.Errorf("covered %d distinct points, want %d", len(covered), want)
			}
			for p, n := range covered {
				if n != 1 {
					t.Fatalf("point %v covered %d times", p, n)
				}
				if !tc.box.Contains(p[0], p[1], p[2]) {
					t.Fatalf("point %v outside input box %v", p, tc.box)
				}
			}
		})
	}
}

func TestFillCommand(t *testing.T) {
	c := Chunk{Box: NewBox(0, 60, 0, 31, 91, 31), Block: "air"}
	if got := c.FillCommand(); got != "fill 0 60 0 31 91 31 air" {
		t.Errorf("FillCommand() = %q", got)
	}

	c.Replace = "stone"
	if got := c.FillCommand(); !strings.HasSuffix(got, " replace stone") {
		t.Errorf("FillCommand() with replace = %q", got)
	}
}
