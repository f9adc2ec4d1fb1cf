package world

import (
	"crypto/sha256"
	"encoding/hex"

	"digworld.ai/internal/sim/world/io/digestcodec"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestcodec.WriteU64(h, &tmp, nowTick)
	digestcodec.WriteU64(h, &tmp, uint64(w.cfg.Seed))
	digestcodec.WriteI64(h, &tmp, int64(w.score))
	digestcodec.WriteI64(h, &tmp, int64(w.selected))
	for _, s := range w.slots {
		h.Write([]byte{byte(s.State)})
		digestcodec.WriteU64(h, &tmp, s.UnitID)
	}
	for _, u := range w.sortedUnits() {
		w.digestUnit(h, &tmp, u)
	}
	for _, v := range w.visuals {
		digestcodec.WriteU64(h, &tmp, v.ID)
		digestcodec.WriteU64(h, &tmp, v.UnitID)
		digestcodec.WriteF64(h, &tmp, v.Offset.X)
		digestcodec.WriteF64(h, &tmp, v.Offset.Y)
	}
	digestcodec.WriteI64(h, &tmp, int64(w.registry.Remaining()))
	digestcodec.WriteI64(h, &tmp, int64(w.registry.FoundCount()))
	digestcodec.WriteI64(h, &tmp, int64(w.fog.VisibleCount()))
	for slot := 0; slot < w.boons.Slots(); slot++ {
		digestcodec.WriteI64(h, &tmp, int64(w.boons.Count(slot)))
	}
	summons := map[treasure.Elemental]int{}
	for _, e := range w.summoned {
		summons[e]++
	}
	digestcodec.WriteSortedIntMap(h, &tmp, summons)

	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestUnit(h digestcodec.Writer, tmp *[8]byte, u *units.Unit) {
	digestcodec.WriteU64(h, tmp, u.ID)
	digestcodec.WriteI64(h, tmp, int64(u.Slot))
	s := u.Stats
	for _, v := range []units.Stat{s.Members, s.HealthPerMember, s.TotalHealth, s.CurrentHealth,
		s.OverworldSpeed, s.ExcavationSpeed, s.BattleSpeed, s.Visibility, s.Damage} {
		digestcodec.WriteU64(h, tmp, uint64(v))
	}
	h.Write([]byte{byte(u.Kind), byte(u.Deployment), digestcodec.BoolByte(u.SpawnPending), digestcodec.BoolByte(u.Moving)})
	digestcodec.WriteI64(h, tmp, int64(u.Visuals))
	digestcodec.WriteF64(h, tmp, u.Pos.X)
	digestcodec.WriteF64(h, tmp, u.Pos.Y)
	digestcodec.WriteI64(h, tmp, int64(u.Tile.X))
	digestcodec.WriteI64(h, tmp, int64(u.Tile.Y))
	digestcodec.WriteF64(h, tmp, u.Destination.X)
	digestcodec.WriteF64(h, tmp, u.Destination.Y)
	digestcodec.WriteBool(h, u.Digging != nil)
	if u.Digging != nil {
		digestcodec.WriteF64(h, tmp, u.Digging.Progress)
	}
}
