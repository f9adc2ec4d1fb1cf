package world

import (
	"math"

	"digworld.ai/internal/sim/world/kernel/model"
)

// The map is centred on the world origin; tile (0,0) is the lower-left corner.

func (w *World) halfSpan() float64 { return float64(w.cfg.Extent) * w.cfg.TileSize / 2 }

// TileOf maps a world position to its tile; ok is false outside the map.
func (w *World) TileOf(p model.Vec2) (model.Tile, bool) {
	tx := math.Floor((p.X + w.halfSpan()) / w.cfg.TileSize)
	ty := math.Floor((p.Y + w.halfSpan()) / w.cfg.TileSize)
	if math.IsNaN(tx) || math.IsNaN(ty) {
		return model.Tile{}, false
	}
	if tx < 0 || ty < 0 || tx >= float64(w.cfg.Extent) || ty >= float64(w.cfg.Extent) {
		return model.Tile{}, false
	}
	return model.Tile{X: int(tx), Y: int(ty)}, true
}

// TileCenter is the world position at the middle of t.
func (w *World) TileCenter(t model.Tile) model.Vec2 {
	return model.Vec2{
		X: (float64(t.X)+0.5)*w.cfg.TileSize - w.halfSpan(),
		Y: (float64(t.Y)+0.5)*w.cfg.TileSize - w.halfSpan(),
	}
}

func (w *World) inMap(t model.Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X < w.cfg.Extent && t.Y < w.cfg.Extent
}
