package worldtest

import (
	"testing"

	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/units"
)

func nearestSite(h *Harness, from model.Tile) model.Tile {
	best := model.Tile{}
	bestD := -1
	for _, s := range h.W.RemainingSites() {
		dx, dy := s.Tile.X-from.X, s.Tile.Y-from.Y
		if d := dx*dx + dy*dy; bestD < 0 || d < bestD {
			best, bestD = s.Tile, d
		}
	}
	if bestD < 0 {
		h.T.Fatalf("no sites")
	}
	return best
}

func TestExploration_ExcavateNearestSite(t *testing.T) {
	h := NewHarness(t, configFromTuning(t))
	id := h.Deploy(1, units.KindExcavation)
	start := h.Unit(id).Tile
	target := nearestSite(h, start)
	before := len(h.W.RemainingSites())
	visibleBefore := h.W.Metrics().FogVisible

	h.MoveSelectedTo(target)
	res, ok := h.RunUntil(20000, func(r world.TickResult) bool { return len(r.Digs) > 0 })
	if !ok {
		t.Fatalf("no excavation within budget")
	}

	dig := res.Digs[0]
	if dig.UnitID != id {
		t.Fatalf("dig by unit %d want %d", dig.UnitID, id)
	}
	// The first finds are early-game overrides into the defense slot.
	if dig.Reward.Slot != 0 {
		t.Fatalf("first reward slot=%d want 0", dig.Reward.Slot)
	}
	if h.W.Score() != dig.Reward.Score || res.Score != dig.Reward.Score {
		t.Fatalf("score=%d result=%d reward=%d", h.W.Score(), res.Score, dig.Reward.Score)
	}
	if len(res.Excavated) != 1 || res.Excavated[0].Tile != dig.Tile {
		t.Fatalf("excavated=%+v dig tile=%v", res.Excavated, dig.Tile)
	}
	if got := len(h.W.RemainingSites()); got != before-res.Excavated[0].Removed {
		t.Fatalf("remaining=%d before=%d removed=%d", got, before, res.Excavated[0].Removed)
	}
	if log := h.W.FoundLog(); len(log) != 1 || log[0].Site.ID != dig.SiteID {
		t.Fatalf("found log=%+v", log)
	}
	if dig.Tile != start && h.W.Metrics().FogVisible <= visibleBefore {
		t.Fatalf("walking revealed nothing")
	}
}

func TestExploration_ArrivalAtDestination(t *testing.T) {
	h := NewHarness(t, configFromTuning(t))
	id := h.Deploy(1, units.KindScout)
	dest := h.Unit(id).Tile
	dest.X += 5
	h.MoveSelectedTo(dest)

	res, ok := h.RunUntil(5000, func(r world.TickResult) bool { return len(r.Arrivals) > 0 })
	if !ok {
		t.Fatalf("never arrived")
	}
	if res.Arrivals[0].UnitID != id || res.Arrivals[0].Tile != dest {
		t.Fatalf("arrival=%+v want unit %d at %v", res.Arrivals[0], id, dest)
	}
	u := h.Unit(id)
	// Units stop as soon as they stand on the destination tile, not at its centre.
	if u.Moving || u.Tile != dest {
		t.Fatalf("unit after arrival: moving=%v tile=%v", u.Moving, u.Tile)
	}
	if v, _ := h.W.Visible(dest); !v {
		t.Fatalf("destination not visible")
	}
}
