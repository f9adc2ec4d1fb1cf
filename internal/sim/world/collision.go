package world

import (
	"math"

	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/logic/rng"
)

// systemSeparation nudges overlapping member visuals apart. Pairs are visited in id order and
// only the second visual of a pair moves; the direction comes from the id hashes so it is the
// same every tick.
func (w *World) systemSeparation() {
	n := len(w.visuals)
	if n < 2 {
		return
	}
	pos := make([]model.Vec2, n)
	for i, v := range w.visuals {
		if u := w.units[v.UnitID]; u != nil {
			pos[i] = u.Pos.Add(v.Offset)
		}
	}
	for i := 0; i < n; i++ {
		a := w.visuals[i]
		for j := i + 1; j < n; j++ {
			b := w.visuals[j]
			sign := 1.0
			if rng.HashID(a.ID) > rng.HashID(b.ID) {
				sign = -1.0
			}
			if math.Abs(pos[j].X-pos[i].X) < w.cfg.CollisionX {
				b.Offset.X += sign * w.cfg.Nudge
				pos[j].X += sign * w.cfg.Nudge
			}
			if math.Abs(pos[j].Y-pos[i].Y) < w.cfg.CollisionY {
				b.Offset.Y += sign * w.cfg.Nudge
				pos[j].Y += sign * w.cfg.Nudge
			}
		}
	}
}
