package world

import (
	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

// systemDigEligibility starts a dig for every unit standing on a buried site.
func (w *World) systemDigEligibility() {
	for _, u := range w.sortedUnits() {
		u.CanDig = u.Digging == nil && w.registry.Has(u.Tile)
		if u.CanDig {
			u.Digging = &units.Digging{}
		}
	}
}

func (w *World) systemDig(nowTick uint64, dt float64, res *TickResult) {
	for _, u := range w.sortedUnits() {
		if u.Progress(dt) {
			w.resolveDig(nowTick, u, res)
		}
	}
}

// resolveDig pays out the first site on the unit's current tile. A unit that walked off the
// site while digging finds nothing.
func (w *World) resolveDig(nowTick uint64, u *units.Unit, res *TickResult) {
	site, ok := w.registry.At(u.Tile)
	if !ok {
		return
	}
	reward := site.Reward
	overridden := false
	if w.registry.FoundCount() < w.cfg.EarlyGameThreshold && reward.Slot != 0 {
		reward.Slot = 0
		overridden = true
	}
	w.registry.Record(treasure.Found{Site: site, Tick: nowTick, UnitID: u.ID, Reward: reward})
	w.score += reward.Score
	removed := w.registry.Remove(u.Tile)

	if reward.IsSummon() {
		w.summoned = append(w.summoned, reward.Summon)
		res.Summons = append(res.Summons, reward.Summon)
	} else {
		w.boons.Add(reward.Slot, reward.Boons)
		// Live stats change only when the digger itself holds the reward slot; other units
		// pick the boons up from the accumulator on their next deployment.
		if u.Slot == reward.Slot {
			for _, b := range reward.Boons {
				boons.Apply(u, b)
			}
		}
	}

	res.Digs = append(res.Digs, DigEvent{UnitID: u.ID, Tile: u.Tile, SiteID: site.ID, Reward: reward, Overridden: overridden})
	res.Excavated = append(res.Excavated, SiteExcavated{Tile: u.Tile, Removed: removed})
	w.auditExcavation(nowTick, u, site, reward, overridden)
}

func (w *World) auditExcavation(nowTick uint64, u *units.Unit, site treasure.Site, reward treasure.Reward, overridden bool) {
	if w.auditLogger == nil {
		return
	}
	e := AuditEntry{
		Tick:       nowTick,
		UnitID:     u.ID,
		Action:     "EXCAVATE",
		Tile:       u.Tile.Array(),
		SiteID:     site.ID,
		Slot:       reward.Slot,
		Overridden: overridden,
		Score:      reward.Score,
		Total:      w.score,
		Reward:     reward,
	}
	for _, b := range reward.Boons {
		e.Boons = append(e.Boons, b.String())
	}
	if reward.IsSummon() {
		e.Summon = reward.Summon.String()
	}
	_ = w.auditLogger.WriteAudit(e)
}
