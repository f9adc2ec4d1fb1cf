// Package units holds unit kinds, their base stats and the per-unit state machines.
package units

import (
	"fmt"
	"math"
	"strings"

	"digworld.ai/internal/sim/world/kernel/model"
)

type Kind uint8

const (
	KindScout Kind = iota + 1
	KindExcavation
	KindAttack
)

func (k Kind) String() string {
	switch k {
	case KindScout:
		return "scout"
	case KindExcavation:
		return "excavation"
	case KindAttack:
		return "attack"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scout":
		return KindScout, true
	case "excavation":
		return KindExcavation, true
	case "attack":
		return KindAttack, true
	default:
		return 0, false
	}
}

// Stat is a saturating unit statistic.
type Stat uint16

const MaxStat Stat = math.MaxUint16

func (s Stat) Add(n int) Stat {
	v := int(s) + n
	if v < 0 {
		return 0
	}
	if v > int(MaxStat) {
		return MaxStat
	}
	return Stat(v)
}

// Mul returns the truncated product, saturating at MaxStat.
func (s Stat) Mul(f float64) Stat {
	v := math.Trunc(float64(s) * f)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= float64(MaxStat) {
		return MaxStat
	}
	return Stat(v)
}

type Stats struct {
	Members         Stat `json:"members"`
	HealthPerMember Stat `json:"health_per_member"`
	TotalHealth     Stat `json:"total_health"`
	CurrentHealth   Stat `json:"current_health"`
	OverworldSpeed  Stat `json:"overworld_speed"`
	ExcavationSpeed Stat `json:"excavation_speed"`
	BattleSpeed     Stat `json:"battle_speed"`
	Visibility      Stat `json:"visibility"`
	Damage          Stat `json:"damage"`
}

// RecomputeHealth re-establishes TotalHealth = Members * HealthPerMember and returns the change.
func (s *Stats) RecomputeHealth() int {
	before := int(s.TotalHealth)
	s.TotalHealth = s.Members.Mul(float64(s.HealthPerMember))
	return int(s.TotalHealth) - before
}

// Preset returns the base stats of a kind at full health.
func Preset(k Kind) (Stats, bool) {
	var s Stats
	switch k {
	case KindScout:
		s = Stats{Members: 1, HealthPerMember: 50, OverworldSpeed: 20, ExcavationSpeed: 6, BattleSpeed: 10, Visibility: 8, Damage: 4}
	case KindExcavation:
		s = Stats{Members: 2, HealthPerMember: 75, OverworldSpeed: 8, ExcavationSpeed: 20, BattleSpeed: 4, Visibility: 3, Damage: 2}
	case KindAttack:
		s = Stats{Members: 3, HealthPerMember: 60, OverworldSpeed: 10, ExcavationSpeed: 2, BattleSpeed: 10, Visibility: 5, Damage: 12}
	default:
		return Stats{}, false
	}
	s.RecomputeHealth()
	s.CurrentHealth = s.TotalHealth
	return s, true
}

type Deployment uint8

const (
	Uninitialized Deployment = iota
	Active
)

func (d Deployment) String() string {
	if d == Active {
		return "active"
	}
	return "uninitialized"
}

// Digging is present while a unit is excavating the site under it.
type Digging struct {
	Progress float64 `json:"progress"`
}

const DigComplete = 100.0

// Unit is a deployed army occupying a slot.
type Unit struct {
	ID    uint64 `json:"id"`
	Slot  int    `json:"slot"`
	Kind  Kind   `json:"kind"`
	Stats Stats  `json:"stats"`

	Deployment Deployment `json:"deployment"`
	// SpawnPending is set while a spawn request for this unit awaits SpawnComplete.
	SpawnPending bool `json:"spawn_pending"`
	// SpawnRequestedAt is the tick of the latest spawn request.
	SpawnRequestedAt uint64 `json:"spawn_requested_at"`
	Visuals          int    `json:"visuals"`

	Pos  model.Vec2 `json:"pos"`
	Tile model.Tile `json:"tile"`

	Moving      bool       `json:"moving"`
	Destination model.Vec2 `json:"destination"`
	DestTile    model.Tile `json:"dest_tile"`

	CanDig  bool     `json:"can_dig"`
	Digging *Digging `json:"digging,omitempty"`
}

func New(id uint64, slot int, k Kind, pos model.Vec2, tile model.Tile) (*Unit, bool) {
	s, ok := Preset(k)
	if !ok {
		return nil, false
	}
	return &Unit{ID: id, Slot: slot, Kind: k, Stats: s, Pos: pos, Tile: tile}, true
}

// MissingVisuals is the number of member visuals the host still has to create.
func (u *Unit) MissingVisuals() int {
	n := int(u.Stats.Members) - u.Visuals
	if n < 0 {
		return 0
	}
	return n
}

// Retrigger returns the unit to Uninitialized so that a fresh spawn request is emitted.
func (u *Unit) Retrigger() {
	u.Deployment = Uninitialized
	u.SpawnPending = false
}

// Advance moves the unit toward its destination for one tick, stopping on the destination point.
func (u *Unit) Advance(dt, speedScale float64) {
	if !u.Moving {
		return
	}
	delta := u.Destination.Sub(u.Pos)
	step := float64(u.Stats.OverworldSpeed) * dt * speedScale
	if delta.Len() <= step {
		u.Pos = u.Destination
		return
	}
	u.Pos = u.Pos.Add(delta.Normalize().Scale(step))
}

// Progress adds one tick of excavation and reports whether the dig completed.
func (u *Unit) Progress(dt float64) bool {
	if u.Digging == nil {
		return false
	}
	u.Digging.Progress += float64(u.Stats.ExcavationSpeed) * dt
	if u.Digging.Progress >= DigComplete {
		u.Digging = nil
		return true
	}
	return false
}
