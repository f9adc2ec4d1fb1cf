package world

import (
	"context"
	"time"
)

// Run steps the world at TickRateHz with a fixed dt until ctx is cancelled or Stop is called.
// Commands received between ticks are applied in arrival order at the next tick boundary.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := w.cfg.FixedDT()
	var pending []Command
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case cmd := <-w.inbox:
			pending = append(pending, cmd)
		case <-ticker.C:
			w.Step(dt, pending)
			pending = nil
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Step advances the world by one tick. It is the entry point for hosts that own their own clock.
func (w *World) Step(dt float64, cmds []Command) TickResult {
	w.mu.Lock()
	res := w.step(dt, cmds)
	w.mu.Unlock()
	w.publish(res)
	return res
}

// StepOnce advances a single tick with the fixed dt used by Run; intended for replays and tests.
func (w *World) StepOnce(cmds []Command) (tick uint64, digest string) {
	res := w.Step(w.cfg.FixedDT(), cmds)
	return res.Tick, res.Digest
}
