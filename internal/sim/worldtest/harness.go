// Package worldtest drives a world through its exported API only, so scenarios read the way a
// host would use the simulation.
package worldtest

import (
	"testing"

	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/units"
)

// Harness is a small black-box test helper:
// - Step()/StepN() advance the world with the fixed dt via StepOnce semantics
// - every TickResult is kept in Results for assertions
// - Deploy() handles the spawn handshake a renderer would normally perform
type Harness struct {
	T *testing.T
	W *world.World

	Results []world.TickResult
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	w, err := world.New(cfg, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w}
}

func (h *Harness) Step(cmds ...world.Command) world.TickResult {
	h.T.Helper()
	res := h.W.Step(h.W.Config().FixedDT(), cmds)
	h.Results = append(h.Results, res)
	return res
}

func (h *Harness) StepN(n int) world.TickResult {
	h.T.Helper()
	var res world.TickResult
	for i := 0; i < n; i++ {
		res = h.Step()
	}
	return res
}

// Deploy unlocks slot if needed, deploys k into it and completes its spawn request.
func (h *Harness) Deploy(slot int, k units.Kind) uint64 {
	h.T.Helper()
	slots := h.W.Slots()
	if slots[slot].State == world.SlotUnavailable {
		h.Step(world.UnlockSlot(slot))
	}
	res := h.Step(world.SelectSlot(slot), world.Deploy(slot, k))
	if len(res.SpawnRequests) != 1 {
		h.T.Fatalf("deploy slot %d: %d spawn requests", slot, len(res.SpawnRequests))
	}
	id := res.SpawnRequests[0].UnitID
	if res := h.Step(world.SpawnComplete(id)); res.Ignored != 0 {
		h.T.Fatalf("spawn complete for %d ignored", id)
	}
	return id
}

// MoveSelectedTo orders the selected slot's unit to the centre of t.
func (h *Harness) MoveSelectedTo(t model.Tile) {
	h.T.Helper()
	if res := h.Step(world.MoveTo(h.W.TileCenter(t))); res.Ignored != 0 {
		h.T.Fatalf("move to %v ignored", t)
	}
}

// RunUntil steps until pred holds for the latest result or maxTicks elapse.
func (h *Harness) RunUntil(maxTicks int, pred func(world.TickResult) bool) (world.TickResult, bool) {
	h.T.Helper()
	for i := 0; i < maxTicks; i++ {
		res := h.Step()
		if pred(res) {
			return res, true
		}
	}
	return world.TickResult{}, false
}

func (h *Harness) Unit(id uint64) units.Unit {
	h.T.Helper()
	u, ok := h.W.Unit(id)
	if !ok {
		h.T.Fatalf("unknown unit %d", id)
	}
	return u
}

// Digests returns the digest of every recorded tick.
func (h *Harness) Digests() []string {
	out := make([]string, 0, len(h.Results))
	for _, r := range h.Results {
		out = append(out, r.Digest)
	}
	return out
}
