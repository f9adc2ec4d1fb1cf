// Package boons records rewards earned per slot and applies them to units.
package boons

import (
	"fmt"

	"digworld.ai/internal/sim/world/units"
)

type Category uint8

const (
	Health Category = iota
	Visibility
	OverworldSpeed
	ExcavationSpeed
	BattleSpeed
	Damage
	Members
)

// Categories lists every category in draw order.
var Categories = [...]Category{Health, Visibility, OverworldSpeed, ExcavationSpeed, BattleSpeed, Damage, Members}

var categoryNames = [...]string{"health", "visibility", "overworld_speed", "excavation_speed", "battle_speed", "damage", "members"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

type Op uint8

const (
	Add Op = iota
	Multiply
)

func (o Op) String() string {
	if o == Multiply {
		return "multiply"
	}
	return "add"
}

type Boon struct {
	Category  Category `json:"category"`
	Op        Op       `json:"op"`
	Magnitude int      `json:"magnitude"`
}

func (b Boon) String() string {
	if b.Op == Multiply {
		return fmt.Sprintf("%s x%d", b.Category, b.Magnitude)
	}
	return fmt.Sprintf("%s +%d", b.Category, b.Magnitude)
}

// Effect reports what applying a boon changed beyond plain stats.
type Effect struct {
	// Respawn is set when the member count changed and visuals must be requested again.
	Respawn bool
}

// Apply mutates u according to b. Add increments; Multiply replaces with the truncated product.
// Health Add keeps the existing deficit, Health Multiply heals fully. Members rebuilds total
// health, carries the delta into current health and returns the unit to Uninitialized.
func Apply(u *units.Unit, b Boon) Effect {
	s := &u.Stats
	m := b.Magnitude
	upd := func(v units.Stat) units.Stat {
		if b.Op == Multiply {
			return v.Mul(float64(m))
		}
		return v.Add(m)
	}
	switch b.Category {
	case Health:
		s.HealthPerMember = upd(s.HealthPerMember)
		delta := s.RecomputeHealth()
		if b.Op == Multiply {
			s.CurrentHealth = s.TotalHealth
		} else {
			s.CurrentHealth = s.CurrentHealth.Add(delta)
		}
	case Visibility:
		s.Visibility = upd(s.Visibility)
	case OverworldSpeed:
		s.OverworldSpeed = upd(s.OverworldSpeed)
	case ExcavationSpeed:
		s.ExcavationSpeed = upd(s.ExcavationSpeed)
	case BattleSpeed:
		s.BattleSpeed = upd(s.BattleSpeed)
	case Damage:
		s.Damage = upd(s.Damage)
	case Members:
		s.Members = upd(s.Members)
		delta := s.RecomputeHealth()
		s.CurrentHealth = s.CurrentHealth.Add(delta)
		u.Retrigger()
		return Effect{Respawn: true}
	}
	return Effect{}
}

// Accumulator holds, per slot, every boon ever earned, bucketed by category. Buckets only grow.
type Accumulator struct {
	slots [][]Boon
}

func NewAccumulator(slots int) *Accumulator {
	return &Accumulator{slots: make([][]Boon, slots)}
}

func (a *Accumulator) Slots() int { return len(a.slots) }

// Add appends boons to slot; out-of-range slots are ignored and reported false.
func (a *Accumulator) Add(slot int, bs []Boon) bool {
	if slot < 0 || slot >= len(a.slots) {
		return false
	}
	a.slots[slot] = append(a.slots[slot], bs...)
	return true
}

// For returns a copy of the slot's history in earn order.
func (a *Accumulator) For(slot int) []Boon {
	if slot < 0 || slot >= len(a.slots) {
		return nil
	}
	out := make([]Boon, len(a.slots[slot]))
	copy(out, a.slots[slot])
	return out
}

// Bucket returns the slot's boons of one category.
func (a *Accumulator) Bucket(slot int, c Category) []Boon {
	var out []Boon
	for _, b := range a.For(slot) {
		if b.Category == c {
			out = append(out, b)
		}
	}
	return out
}

// ApplyTo replays the history of u's slot onto u.
func (a *Accumulator) ApplyTo(u *units.Unit) Effect {
	var eff Effect
	for _, b := range a.For(u.Slot) {
		if Apply(u, b).Respawn {
			eff.Respawn = true
		}
	}
	return eff
}

// Count returns the number of boons recorded for slot.
func (a *Accumulator) Count(slot int) int {
	if slot < 0 || slot >= len(a.slots) {
		return 0
	}
	return len(a.slots[slot])
}
