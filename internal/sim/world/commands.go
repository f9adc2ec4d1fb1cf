package world

import (
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/units"
)

// Command types accepted from the host.
const (
	CmdSelectSlot    = "SELECT_SLOT"
	CmdDeploy        = "DEPLOY"
	CmdMoveTo        = "MOVE_TO"
	CmdSpawnComplete = "SPAWN_COMPLETE"
	CmdUnlockSlot    = "UNLOCK_SLOT"
)

// Command is a host request queued until the next tick boundary.
type Command struct {
	Type   string     `json:"type"`
	Slot   int        `json:"slot"`
	Kind   string     `json:"kind,omitempty"`
	Target [2]float64 `json:"target"`
	UnitID uint64     `json:"unit_id,omitempty"`
}

func SelectSlot(slot int) Command { return Command{Type: CmdSelectSlot, Slot: slot} }
func UnlockSlot(slot int) Command { return Command{Type: CmdUnlockSlot, Slot: slot} }

func Deploy(slot int, k units.Kind) Command {
	return Command{Type: CmdDeploy, Slot: slot, Kind: k.String()}
}

func MoveTo(p model.Vec2) Command { return Command{Type: CmdMoveTo, Target: p.Array()} }

func SpawnComplete(unitID uint64) Command {
	return Command{Type: CmdSpawnComplete, UnitID: unitID}
}

// applyCommand reports whether cmd was accepted. Malformed commands change nothing.
func (w *World) applyCommand(cmd Command) bool {
	switch cmd.Type {
	case CmdSelectSlot:
		if !w.validSlot(cmd.Slot) {
			return false
		}
		w.selected = cmd.Slot
		return true
	case CmdUnlockSlot:
		if !w.validSlot(cmd.Slot) || w.slots[cmd.Slot].State != SlotUnavailable {
			return false
		}
		w.slots[cmd.Slot].State = SlotAvailable
		return true
	case CmdDeploy:
		k, ok := units.ParseKind(cmd.Kind)
		if !ok || !w.validSlot(cmd.Slot) {
			return false
		}
		return w.deploy(cmd.Slot, k)
	case CmdMoveTo:
		return w.orderMove(model.Vec2{X: cmd.Target[0], Y: cmd.Target[1]})
	case CmdSpawnComplete:
		return w.completeSpawn(cmd.UnitID)
	default:
		return false
	}
}

func (w *World) validSlot(slot int) bool { return slot >= 0 && slot < len(w.slots) }

// deploy summons a unit of kind k into an Available slot at the player base.
// Boons already earned for the slot are replayed onto it.
func (w *World) deploy(slot int, k units.Kind) bool {
	if w.slots[slot].State != SlotAvailable {
		return false
	}
	w.nextUnitID++
	id := w.nextUnitID
	u, ok := units.New(id, slot, k, w.TileCenter(w.bases.Player), w.bases.Player)
	if !ok {
		return false
	}
	w.boons.ApplyTo(u)
	w.units[id] = u
	w.slots[slot] = Slot{State: SlotSummoned, UnitID: id}
	return true
}

// orderMove targets the unit in the selected slot at p.
func (w *World) orderMove(p model.Vec2) bool {
	u := w.unitInSlot(w.selected)
	if u == nil {
		return false
	}
	t, ok := w.TileOf(p)
	if !ok {
		return false
	}
	u.Moving = true
	u.Destination = p
	u.DestTile = t
	return true
}

// completeSpawn creates the member visuals a pending spawn request asked for and activates the unit.
func (w *World) completeSpawn(id uint64) bool {
	u := w.units[id]
	if u == nil || u.Deployment != units.Uninitialized || !u.SpawnPending {
		return false
	}
	n := w.visualsWanted(u)
	for i := 0; i < n; i++ {
		w.nextVisualID++
		idx := float64(u.Visuals)
		w.visuals = append(w.visuals, &Visual{
			ID:     w.nextVisualID,
			UnitID: u.ID,
			Offset: model.Vec2{X: idx * w.cfg.SpawnStepX, Y: idx * w.cfg.SpawnStepY},
		})
		u.Visuals++
	}
	u.Deployment = units.Active
	u.SpawnPending = false
	return true
}

func (w *World) visualsWanted(u *units.Unit) int {
	n := u.MissingVisuals()
	if limit := w.cfg.MaxVisualsPerUnit; limit > 0 && u.Visuals+n > limit {
		n = limit - u.Visuals
	}
	if n < 0 {
		return 0
	}
	return n
}

func (w *World) unitInSlot(slot int) *units.Unit {
	if !w.validSlot(slot) || w.slots[slot].State != SlotSummoned {
		return nil
	}
	return w.units[w.slots[slot].UnitID]
}
