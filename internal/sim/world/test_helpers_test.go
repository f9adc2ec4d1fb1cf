package world

import (
	"testing"

	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

func testConfig() WorldConfig {
	cfg := DefaultConfig()
	cfg.ID = "test"
	cfg.Extent = 96
	return cfg
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// setSites replaces the buried treasure with sites.
func setSites(w *World, sites ...treasure.Site) {
	w.registry = treasure.NewRegistry(sites)
}

func boonReward(slot int, bs ...boons.Boon) treasure.Reward {
	r := treasure.Reward{Score: treasure.BaseScore, Boons: bs, Slot: slot}
	for _, b := range bs {
		if b.Op == boons.Multiply {
			r.Score += treasure.MultiplyScore
		} else {
			r.Score += treasure.AddScore
		}
	}
	return r
}

// deployActive deploys kind into slot and completes its spawn; returns the unit id.
func deployActive(t *testing.T, w *World, slot int, k units.Kind) uint64 {
	t.Helper()
	if w.slots[slot].State == SlotUnavailable {
		w.Step(w.cfg.FixedDT(), []Command{UnlockSlot(slot)})
	}
	res := w.Step(w.cfg.FixedDT(), []Command{Deploy(slot, k)})
	if len(res.SpawnRequests) != 1 {
		t.Fatalf("expected one spawn request, got %d", len(res.SpawnRequests))
	}
	id := res.SpawnRequests[0].UnitID
	res = w.Step(w.cfg.FixedDT(), []Command{SpawnComplete(id)})
	if res.Ignored != 0 {
		t.Fatalf("spawn complete ignored")
	}
	return id
}

func tileEast(t model.Tile, n int) model.Tile { return model.Tile{X: t.X + n, Y: t.Y} }
