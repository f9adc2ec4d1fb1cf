package world

import "time"

// step runs one tick: separation, commands, integration, tile sync, dig eligibility,
// dig progress, fog, then spawn requests.
func (w *World) step(dt float64, cmds []Command) TickResult {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	res := TickResult{Tick: nowTick, DT: dt}

	w.systemSeparation()

	accepted := make([]Command, 0, len(cmds))
	for _, cmd := range cmds {
		if w.applyCommand(cmd) {
			accepted = append(accepted, cmd)
			continue
		}
		res.Ignored++
	}
	res.Commands = accepted
	if res.Ignored > 0 {
		w.ignoredTotal.Add(uint64(res.Ignored))
	}

	w.systemMovement(dt, &res)
	w.systemTileSync()
	w.systemDigEligibility()
	w.systemDig(nowTick, dt, &res)
	w.systemFog()
	res.Revealed = w.fog.TakeRevealed()
	w.systemSpawnRequests(nowTick, &res)

	res.Score = w.score
	res.Digest = w.stateDigest(nowTick)
	if w.tickLogger != nil {
		// Record the full input so replays see the same ignored commands.
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, DT: dt, Commands: cmds, Digest: res.Digest})
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	w.tick.Add(1)
	w.storeMetrics(stepMS, res.Ignored, len(res.Revealed))
	return res
}
