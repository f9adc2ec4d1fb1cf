package main

import (
	"context"

	"digworld.ai/internal/sim/world"
)

// runAutoSpawner stands in for a renderer: every spawn request is acknowledged on the next tick.
func runAutoSpawner(ctx context.Context, w *world.World) {
	ticks, unsubscribe := w.Subscribe(64)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-ticks:
			for _, req := range res.SpawnRequests {
				select {
				case w.Inbox() <- world.SpawnComplete(req.UnitID):
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
