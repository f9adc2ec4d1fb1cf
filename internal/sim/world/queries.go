package world

import (
	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/placement"
	"digworld.ai/internal/sim/world/terrain/gen"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

// The height field and class map are immutable after New and are read without locking.

func (w *World) HeightAt(t model.Tile) (float64, bool) { return w.heights.At(t.X, t.Y) }

func (w *World) ClassAt(t model.Tile) (gen.TileClass, bool) { return w.classes.At(t.X, t.Y) }

// ClassRow returns row y of the class map as bytes.
func (w *World) ClassRow(y int) []byte { return w.classes.Row(y) }

func (w *World) GenerationReport() gen.Report { return w.report }

func (w *World) Bases() placement.Bases {
	out := w.bases
	out.Rivals = append([]model.Tile(nil), w.bases.Rivals...)
	return out
}

// PlayerBaseWorldPos is where a host camera should start.
func (w *World) PlayerBaseWorldPos() model.Vec2 { return w.TileCenter(w.bases.Player) }

func (w *World) Visible(t model.Tile) (bool, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fog.Visible(t)
}

// FogRow returns row y of the fog overlay RLE-encoded.
func (w *World) FogRow(y int) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fog.EncodeRow(y)
}

func (w *World) Score() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.score
}

func (w *World) SelectedSlot() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selected
}

func (w *World) Slots() []Slot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Slot(nil), w.slots...)
}

func (w *World) Unit(id uint64) (units.Unit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	u := w.units[id]
	if u == nil {
		return units.Unit{}, false
	}
	return copyUnit(u), true
}

// Units returns copies of every unit in id order.
func (w *World) Units() []units.Unit {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sorted := w.sortedUnits()
	out := make([]units.Unit, 0, len(sorted))
	for _, u := range sorted {
		out = append(out, copyUnit(u))
	}
	return out
}

func copyUnit(u *units.Unit) units.Unit {
	c := *u
	if u.Digging != nil {
		d := *u.Digging
		c.Digging = &d
	}
	return c
}

func (w *World) Visuals() []Visual {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Visual, 0, len(w.visuals))
	for _, v := range w.visuals {
		out = append(out, *v)
	}
	return out
}

func (w *World) Boons(slot int) []boons.Boon {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.boons.For(slot)
}

func (w *World) FoundLog() []treasure.Found {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.FoundLog()
}

func (w *World) RemainingSites() []treasure.Site {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.Sites()
}

func (w *World) Summoned() []treasure.Elemental {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]treasure.Elemental(nil), w.summoned...)
}
