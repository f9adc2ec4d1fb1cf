// Package treasure scatters hidden excavation sites and rolls the reward each one holds.
package treasure

import (
	"fmt"
	"math/rand/v2"

	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/logic/mathx"
	"digworld.ai/internal/sim/world/logic/rng"
)

type Elemental uint8

const (
	Fire Elemental = iota + 1
	Water
	Earth
	Air
	Gravity
)

var elementals = [...]Elemental{Fire, Water, Earth, Air, Gravity}

func (e Elemental) String() string {
	switch e {
	case Fire:
		return "fire"
	case Water:
		return "water"
	case Earth:
		return "earth"
	case Air:
		return "air"
	case Gravity:
		return "gravity"
	default:
		return fmt.Sprintf("elemental(%d)", uint8(e))
	}
}

const (
	BaseScore     = 100
	AddScore      = 20
	MultiplyScore = 60
	SummonScore   = 200

	Slots = 8
)

// Reward is what a site yields. Either Boons is non-empty and Summon is zero, or the reverse.
type Reward struct {
	Score  int          `json:"score"`
	Boons  []boons.Boon `json:"boons,omitempty"`
	Summon Elemental    `json:"summon,omitempty"`
	Slot   int          `json:"slot"`
}

func (r Reward) IsSummon() bool { return r.Summon != 0 }

type span struct{ lo, hi int }

type magnitudes struct {
	add span
	mul span
}

var rangeTable = map[boons.Category]magnitudes{
	boons.Health:          {add: span{20, 100}, mul: span{2, 4}},
	boons.Visibility:      {add: span{1, 10}, mul: span{2, 3}},
	boons.OverworldSpeed:  {add: span{1, 10}, mul: span{2, 3}},
	boons.ExcavationSpeed: {add: span{1, 5}, mul: span{2, 3}},
	boons.BattleSpeed:     {add: span{1, 10}, mul: span{2, 4}},
	boons.Damage:          {add: span{1, 20}, mul: span{2, 4}},
	boons.Members:         {add: span{1, 4}, mul: span{2, 4}},
}

// RewardParams tunes the reward roll.
type RewardParams struct {
	BoonMean     float64
	MinBoons     int
	MaxBoons     int
	MultiplyProb float64
	SummonProb   float64
}

func DefaultRewardParams() RewardParams {
	return RewardParams{BoonMean: 1.4, MinBoons: 1, MaxBoons: 6, MultiplyProb: 0.1, SummonProb: 0.05}
}

// GenerateReward rolls one reward. Draw order: boon count, then per boon category, op and
// magnitude, then the summon check, then the slot. Changing the order changes every world.
func GenerateReward(r *rand.Rand, p RewardParams) Reward {
	out := Reward{Score: BaseScore}
	n := int(mathx.ClampFloat(rng.Poisson(r, p.BoonMean), float64(p.MinBoons), float64(p.MaxBoons)))
	out.Boons = make([]boons.Boon, 0, n)
	for i := 0; i < n; i++ {
		c := boons.Categories[r.IntN(len(boons.Categories))]
		m := rangeTable[c]
		b := boons.Boon{Category: c}
		if rng.Bool(r, p.MultiplyProb) {
			b.Op = boons.Multiply
			b.Magnitude = rng.IntRange(r, m.mul.lo, m.mul.hi)
			out.Score += MultiplyScore
		} else {
			b.Op = boons.Add
			b.Magnitude = rng.IntRange(r, m.add.lo, m.add.hi)
			out.Score += AddScore
		}
		out.Boons = append(out.Boons, b)
	}
	if rng.Bool(r, p.SummonProb) {
		out.Boons = nil
		out.Score = BaseScore + SummonScore
		out.Summon = elementals[r.IntN(len(elementals))]
	}
	out.Slot = r.IntN(Slots)
	return out
}
