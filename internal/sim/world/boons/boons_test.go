package boons

import (
	"testing"

	"github.com/stretchr/testify/require"

	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/units"
)

func newUnit(t *testing.T, k units.Kind, slot int) *units.Unit {
	t.Helper()
	u, ok := units.New(1, slot, k, model.Vec2{}, model.Tile{})
	require.True(t, ok)
	u.Deployment = units.Active
	return u
}

func TestApply_HealthMultiplyFullHeals(t *testing.T) {
	u := newUnit(t, units.KindScout, 1)
	u.Stats.CurrentHealth = 30
	Apply(u, Boon{Category: Health, Op: Multiply, Magnitude: 3})
	require.Equal(t, units.Stat(150), u.Stats.HealthPerMember)
	require.Equal(t, units.Stat(150), u.Stats.TotalHealth)
	require.Equal(t, units.Stat(150), u.Stats.CurrentHealth)
}

func TestApply_HealthAddKeepsDeficit(t *testing.T) {
	u := newUnit(t, units.KindExcavation, 1) // 2 x 75
	u.Stats.CurrentHealth = 100
	Apply(u, Boon{Category: Health, Op: Add, Magnitude: 25})
	require.Equal(t, units.Stat(200), u.Stats.TotalHealth)
	require.Equal(t, units.Stat(150), u.Stats.CurrentHealth)
}

func TestApply_MembersRetriggers(t *testing.T) {
	u := newUnit(t, units.KindAttack, 1) // 3 x 60
	u.Visuals = 3
	eff := Apply(u, Boon{Category: Members, Op: Add, Magnitude: 2})
	require.True(t, eff.Respawn)
	require.Equal(t, units.Uninitialized, u.Deployment)
	require.Equal(t, units.Stat(5), u.Stats.Members)
	require.Equal(t, units.Stat(300), u.Stats.TotalHealth)
	require.Equal(t, units.Stat(300), u.Stats.CurrentHealth)
	require.Equal(t, 2, u.MissingVisuals())
}

func TestApply_PlainStats(t *testing.T) {
	u := newUnit(t, units.KindScout, 1)
	Apply(u, Boon{Category: Visibility, Op: Add, Magnitude: 4})
	Apply(u, Boon{Category: OverworldSpeed, Op: Multiply, Magnitude: 2})
	Apply(u, Boon{Category: Damage, Op: Add, Magnitude: 1})
	require.Equal(t, units.Stat(12), u.Stats.Visibility)
	require.Equal(t, units.Stat(40), u.Stats.OverworldSpeed)
	require.Equal(t, units.Stat(5), u.Stats.Damage)
	require.Equal(t, units.Active, u.Deployment)
}

func TestAccumulator_PerSlotIsolation(t *testing.T) {
	a := NewAccumulator(8)
	require.True(t, a.Add(0, []Boon{{Category: Damage, Op: Add, Magnitude: 3}}))
	require.True(t, a.Add(2, []Boon{{Category: Health, Op: Multiply, Magnitude: 2}, {Category: Damage, Op: Add, Magnitude: 1}}))
	require.False(t, a.Add(8, []Boon{{Category: Damage}}))

	require.Len(t, a.For(0), 1)
	require.Len(t, a.For(1), 0)
	require.Len(t, a.For(2), 2)
	require.Len(t, a.Bucket(2, Damage), 1)
	require.Len(t, a.Bucket(2, Members), 0)

	got := a.For(2)
	got[0].Magnitude = 99
	require.Equal(t, 2, a.For(2)[0].Magnitude, "For returns a copy")
}

func TestAccumulator_ApplyToReplaysHistory(t *testing.T) {
	a := NewAccumulator(8)
	a.Add(3, []Boon{{Category: ExcavationSpeed, Op: Add, Magnitude: 4}, {Category: ExcavationSpeed, Op: Multiply, Magnitude: 2}})
	a.Add(1, []Boon{{Category: ExcavationSpeed, Op: Add, Magnitude: 100}})

	u := newUnit(t, units.KindScout, 3)
	eff := a.ApplyTo(u)
	require.False(t, eff.Respawn)
	require.Equal(t, units.Stat(20), u.Stats.ExcavationSpeed) // (6+4)*2
}
