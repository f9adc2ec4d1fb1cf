// Package fog tracks which tiles have ever been seen. Tiles only go from hidden to visible.
package fog

import (
	"digworld.ai/internal/sim/encoding"
	"digworld.ai/internal/sim/world/kernel/model"
)

type Tracker struct {
	size     int
	visible  []bool
	count    int
	revealed []model.Tile
}

func New(size int) *Tracker {
	if size < 0 {
		size = 0
	}
	return &Tracker{size: size, visible: make([]bool, size*size)}
}

func (f *Tracker) Size() int { return f.size }

// Reveal marks the (2r+1)² square around center visible, skipping tiles outside the map.
// It returns how many tiles became visible for the first time.
func (f *Tracker) Reveal(center model.Tile, radius int) int {
	if radius < 0 {
		return 0
	}
	x0, x1 := max(center.X-radius, 0), min(center.X+radius, f.size-1)
	y0, y1 := max(center.Y-radius, 0), min(center.Y+radius, f.size-1)
	n := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*f.size + x
			if f.visible[i] {
				continue
			}
			f.visible[i] = true
			f.revealed = append(f.revealed, model.Tile{X: x, Y: y})
			n++
		}
	}
	f.count += n
	return n
}

// Visible reports whether t has been seen; ok is false outside the map.
func (f *Tracker) Visible(t model.Tile) (visible, ok bool) {
	if t.X < 0 || t.Y < 0 || t.X >= f.size || t.Y >= f.size {
		return false, false
	}
	return f.visible[t.Y*f.size+t.X], true
}

func (f *Tracker) VisibleCount() int { return f.count }

// TakeRevealed returns and clears the tiles revealed since the previous call.
func (f *Tracker) TakeRevealed() []model.Tile {
	out := f.revealed
	f.revealed = nil
	return out
}

// EncodeRow returns row y as an RLE string, or "" outside the map.
func (f *Tracker) EncodeRow(y int) string {
	if y < 0 || y >= f.size {
		return ""
	}
	return encoding.EncodeBits(f.visible[y*f.size : (y+1)*f.size])
}
