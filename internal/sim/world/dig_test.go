package world

import (
	"testing"

	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

func TestDig_ResolvesOnFifthTickAndAppliesBoon(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.EarlyGameThreshold = 0
	base := w.Bases().Player
	setSites(w, treasure.Site{ID: 7, Tile: base, Reward: boonReward(1, boons.Boon{Category: boons.Health, Op: boons.Multiply, Magnitude: 3})})

	res := w.Step(1, []Command{Deploy(1, units.KindExcavation)})
	if len(res.SpawnRequests) != 1 || res.SpawnRequests[0].Count != 2 {
		t.Fatalf("spawn requests=%+v", res.SpawnRequests)
	}
	id := res.SpawnRequests[0].UnitID
	for i := 0; i < 3; i++ {
		res = w.Step(1, nil)
		if len(res.Digs) != 0 {
			t.Fatalf("dig resolved early on step %d", i+2)
		}
	}
	u, _ := w.Unit(id)
	if u.Digging == nil || u.Digging.Progress != 80 {
		t.Fatalf("progress=%+v", u.Digging)
	}

	res = w.Step(1, nil)
	if len(res.Digs) != 1 {
		t.Fatalf("expected dig on fifth step, got %+v", res.Digs)
	}
	if res.Digs[0].SiteID != 7 || res.Digs[0].Overridden {
		t.Fatalf("dig event=%+v", res.Digs[0])
	}
	if len(res.Excavated) != 1 || res.Excavated[0].Tile != base {
		t.Fatalf("excavated=%+v", res.Excavated)
	}
	if w.Score() != 160 {
		t.Fatalf("score=%d want 160", w.Score())
	}

	u, _ = w.Unit(id)
	if u.Digging != nil {
		t.Fatalf("digging state not cleared")
	}
	if u.Stats.HealthPerMember != 225 || u.Stats.TotalHealth != 450 || u.Stats.CurrentHealth != 450 {
		t.Fatalf("health after x3: %+v", u.Stats)
	}
	if got := w.Boons(1); len(got) != 1 {
		t.Fatalf("slot 1 boons=%v", got)
	}

	// Site is gone; no new dig starts.
	res = w.Step(1, nil)
	u, _ = w.Unit(id)
	if u.CanDig || u.Digging != nil || len(res.Digs) != 0 {
		t.Fatalf("unit kept digging an excavated tile: %+v", u)
	}
	if len(w.FoundLog()) != 1 {
		t.Fatalf("found log=%d", len(w.FoundLog()))
	}
}

func TestDig_EarlyGameOverridesSlot(t *testing.T) {
	cases := []struct {
		name      string
		prior     int
		wantSlot  int
		overriden bool
	}{
		{"first", 0, 0, true},
		{"third", 2, 0, true},
		{"fourth", 3, 5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t)
			base := w.Bases().Player
			setSites(w, treasure.Site{ID: 1, Tile: base, Reward: boonReward(5, boons.Boon{Category: boons.Damage, Op: boons.Add, Magnitude: 2})})
			for i := 0; i < tc.prior; i++ {
				w.registry.Record(treasure.Found{Site: treasure.Site{ID: 100 + i}})
			}
			w.Step(1, []Command{Deploy(1, units.KindExcavation)})
			var got *DigEvent
			for i := 0; i < 10 && got == nil; i++ {
				res := w.Step(1, nil)
				if len(res.Digs) > 0 {
					got = &res.Digs[0]
				}
			}
			if got == nil {
				t.Fatalf("dig never resolved")
			}
			if got.Reward.Slot != tc.wantSlot || got.Overridden != tc.overriden {
				t.Fatalf("slot=%d overridden=%v", got.Reward.Slot, got.Overridden)
			}
			if len(w.Boons(tc.wantSlot)) != 1 {
				t.Fatalf("boons not recorded in slot %d", tc.wantSlot)
			}
		})
	}
}

func TestDig_PerSlotIsolation(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.EarlyGameThreshold = 0
	base := w.Bases().Player
	setSites(w, treasure.Site{ID: 1, Tile: base, Reward: boonReward(3, boons.Boon{Category: boons.Damage, Op: boons.Add, Magnitude: 5})})

	res := w.Step(1, []Command{Deploy(1, units.KindExcavation)})
	id := res.SpawnRequests[0].UnitID
	for i := 0; i < 5; i++ {
		w.Step(1, nil)
	}
	u, _ := w.Unit(id)
	if u.Stats.Damage != 2 {
		t.Fatalf("digger damage changed: %d", u.Stats.Damage)
	}
	if len(w.Boons(3)) != 1 || len(w.Boons(1)) != 0 {
		t.Fatalf("boons leaked across slots")
	}

	// A unit deployed to slot 3 later receives the earned boon.
	w.Step(1, []Command{UnlockSlot(3)})
	res = w.Step(1, []Command{Deploy(3, units.KindScout)})
	late, _ := w.Unit(res.SpawnRequests[0].UnitID)
	if late.Stats.Damage != 9 {
		t.Fatalf("late unit damage=%d want 9", late.Stats.Damage)
	}
}

func TestDig_SummonReward(t *testing.T) {
	w := newTestWorld(t)
	base := w.Bases().Player
	setSites(w, treasure.Site{ID: 1, Tile: base, Reward: treasure.Reward{Score: 300, Summon: treasure.Gravity, Slot: 4}})
	w.Step(1, []Command{Deploy(1, units.KindExcavation)})
	var summons []treasure.Elemental
	for i := 0; i < 6; i++ {
		res := w.Step(1, nil)
		summons = append(summons, res.Summons...)
	}
	if len(summons) != 1 || summons[0] != treasure.Gravity {
		t.Fatalf("summons=%v", summons)
	}
	if got := w.Summoned(); len(got) != 1 {
		t.Fatalf("summoned list=%v", got)
	}
	if w.Score() != 300 {
		t.Fatalf("score=%d", w.Score())
	}
}

func TestDig_LeavingTileFindsNothing(t *testing.T) {
	w := newTestWorld(t)
	base := w.Bases().Player
	setSites(w, treasure.Site{ID: 1, Tile: base, Reward: boonReward(1, boons.Boon{Category: boons.Damage, Op: boons.Add, Magnitude: 1})})
	res := w.Step(1, []Command{Deploy(1, units.KindExcavation)})
	id := res.SpawnRequests[0].UnitID

	// Carry the unit two tiles away mid-dig.
	w.units[id].Pos = w.TileCenter(tileEast(base, 2))
	for i := 0; i < 6; i++ {
		if res := w.Step(1, nil); len(res.Digs) != 0 {
			t.Fatalf("dig resolved away from the site")
		}
	}
	if w.registry.Remaining() != 1 || w.Score() != 0 {
		t.Fatalf("site consumed remotely")
	}
}

func TestDig_MembersBoonRetriggersSpawn(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.EarlyGameThreshold = 0
	base := w.Bases().Player
	setSites(w, treasure.Site{ID: 1, Tile: base, Reward: boonReward(1, boons.Boon{Category: boons.Members, Op: boons.Add, Magnitude: 2})})
	id := deployActive(t, w, 1, units.KindAttack)

	var req *SpawnRequest
	for i := 0; i < 60 && req == nil; i++ {
		res := w.Step(1, nil)
		if len(res.SpawnRequests) > 0 {
			req = &res.SpawnRequests[0]
		}
	}
	if req == nil || req.UnitID != id || req.Count != 2 {
		t.Fatalf("respawn request=%+v", req)
	}
	u, _ := w.Unit(id)
	if u.Deployment != units.Uninitialized || u.Stats.Members != 5 {
		t.Fatalf("unit after members boon: %+v", u)
	}
	w.Step(1, []Command{SpawnComplete(id)})
	if got := len(w.Visuals()); got != 5 {
		t.Fatalf("visuals=%d want 5", got)
	}
}

func TestDig_BoonsSkipOtherSlotsLiveUnit(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.EarlyGameThreshold = 0
	base := w.Bases().Player
	setSites(w)

	scout := deployActive(t, w, 2, units.KindScout)
	w.units[scout].Pos = w.TileCenter(tileEast(base, 3))
	w.Step(1, nil)

	setSites(w, treasure.Site{ID: 1, Tile: base, Reward: boonReward(2, boons.Boon{Category: boons.Damage, Op: boons.Add, Magnitude: 5})})
	res := w.Step(1, []Command{Deploy(1, units.KindExcavation)})
	digger := res.SpawnRequests[0].UnitID
	dug := false
	for i := 0; i < 8 && !dug; i++ {
		dug = len(w.Step(1, nil).Digs) == 1
	}
	if !dug {
		t.Fatalf("dig never resolved")
	}

	s, _ := w.Unit(scout)
	if s.Stats.Damage != 4 {
		t.Fatalf("slot 2 unit damage=%d want 4", s.Stats.Damage)
	}
	d, _ := w.Unit(digger)
	if d.Stats.Damage != 2 {
		t.Fatalf("digger damage=%d want 2", d.Stats.Damage)
	}
	if len(w.Boons(2)) != 1 {
		t.Fatalf("slot 2 boons=%v", w.Boons(2))
	}
}
