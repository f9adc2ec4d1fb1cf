package world

import "digworld.ai/internal/sim/world/units"

// systemMovement stops units standing on their destination tile and advances the rest.
func (w *World) systemMovement(dt float64, res *TickResult) {
	for _, u := range w.sortedUnits() {
		if !u.Moving {
			continue
		}
		if u.Tile == u.DestTile {
			u.Moving = false
			res.Arrivals = append(res.Arrivals, Arrival{UnitID: u.ID, Tile: u.Tile})
			continue
		}
		u.Advance(dt, w.cfg.SpeedScale)
	}
}

// systemTileSync recomputes each unit's tile; positions off the map keep the previous tile.
func (w *World) systemTileSync() {
	for _, u := range w.sortedUnits() {
		if t, ok := w.TileOf(u.Pos); ok {
			u.Tile = t
		}
	}
}

func (w *World) systemFog() {
	for _, u := range w.sortedUnits() {
		if u.Deployment != units.Active {
			continue
		}
		w.fog.Reveal(u.Tile, int(u.Stats.Visibility))
	}
}

// systemSpawnRequests asks for visuals once per deployment and once per member change.
// A request still unanswered after SpawnRetryTicks is sent again.
func (w *World) systemSpawnRequests(nowTick uint64, res *TickResult) {
	retry := uint64(w.cfg.SpawnRetryTicks)
	for _, u := range w.sortedUnits() {
		if u.Deployment != units.Uninitialized {
			continue
		}
		if u.SpawnPending && (retry == 0 || nowTick-u.SpawnRequestedAt < retry) {
			continue
		}
		u.SpawnPending = true
		u.SpawnRequestedAt = nowTick
		res.SpawnRequests = append(res.SpawnRequests, SpawnRequest{
			UnitID: u.ID,
			Slot:   u.Slot,
			Kind:   u.Kind.String(),
			Count:  w.visualsWanted(u),
			Pos:    u.Pos,
		})
	}
}

func (w *World) sortedUnits() []*units.Unit {
	out := make([]*units.Unit, 0, len(w.units))
	for id := uint64(1); id <= w.nextUnitID; id++ {
		if u := w.units[id]; u != nil {
			out = append(out, u)
		}
	}
	return out
}
