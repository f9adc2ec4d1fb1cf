package gen

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func smallParams() Params {
	p := DefaultParams()
	p.Size = 96
	return p
}

func TestGenerate_Deterministic(t *testing.T) {
	p := smallParams()
	a, ca, _, err := Generate(442, p)
	require.NoError(t, err)
	p.Workers = 1
	b, cb, _, err := Generate(442, p)
	require.NoError(t, err)
	require.True(t, a.Equal(b), "same seed must give identical fields")
	require.Equal(t, ca.Row(10), cb.Row(10))

	c, _, _, err := Generate(443, smallParams())
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}

func TestSample_RangeOfNoise(t *testing.T) {
	h := Sample(7, smallParams())
	r := h.Range()
	require.GreaterOrEqual(t, r.Min, -1.0)
	require.LessOrEqual(t, r.Max, 1.0)
}

func TestRecenter_MeanInBand(t *testing.T) {
	h := Sample(442, smallParams())
	Recenter(h)
	m := h.Range().Mean
	require.GreaterOrEqual(t, m, 0.3)
	require.LessOrEqual(t, m, 0.7)
}

func TestRecenter_LeavesInBandFieldAlone(t *testing.T) {
	h := Flat(4, 0.4)
	mean, shifted := Recenter(h)
	require.False(t, shifted)
	require.InDelta(t, 0.4, mean, 1e-12)
	v, _ := h.At(2, 2)
	require.Equal(t, 0.4, v)
}

func TestRecenter_ShiftsLowField(t *testing.T) {
	h := Flat(4, 0.1)
	_, shifted := Recenter(h)
	require.True(t, shifted)
	require.InDelta(t, 0.5, h.Range().Mean, 1e-12)
}

func TestSquash_OnlyOutOfRangeCells(t *testing.T) {
	h := Flat(3, 0.25)
	h.Set(0, 0, 1.5)
	h.Set(2, 2, -0.5)
	n := Squash(h)
	require.Equal(t, 2, n)
	v, _ := h.At(1, 1)
	require.Equal(t, 0.25, v)
	v, _ = h.At(0, 0)
	require.InDelta(t, 1/(1+math.Exp(-1.5)), v, 1e-12)
	r := h.Range()
	require.GreaterOrEqual(t, r.Min, 0.0)
	require.LessOrEqual(t, r.Max, 1.0)
}

func TestSquash_PostconditionOnRealField(t *testing.T) {
	h := Sample(442, smallParams())
	Recenter(h)
	Squash(h)
	r := h.Range()
	require.GreaterOrEqual(t, r.Min, 0.0)
	require.LessOrEqual(t, r.Max, 1.0)
}

func TestErode_FlatField(t *testing.T) {
	h := Flat(8, 0.5)
	Erode(h, 1, 0.01, 0)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v, ok := h.At(x, y)
			require.True(t, ok)
			require.InDelta(t, 0.505, v, 1e-12)
		}
	}
}

func TestErode_PitPullsNeighboursDown(t *testing.T) {
	h := Flat(5, 0.8)
	h.Set(2, 2, 0.2)
	Erode(h, 1, 0, 1)
	v, _ := h.At(1, 1)
	require.Less(t, v, 0.8)
}

func TestErode_ParallelMatchesSerial(t *testing.T) {
	a := Sample(9, smallParams())
	b := a.Clone()
	Erode(a, 2, 0.01, 1)
	Erode(b, 2, 0.01, 8)
	require.True(t, a.Equal(b))
}

func TestRiverPass_SourceOverwritesLowestNeighbour(t *testing.T) {
	h := NewHeightField(3)
	vals := []float64{
		0.9, 0.5, 0.5,
		0.5, 0.5, 0.5,
		0.5, 0.5, 0.1,
	}
	copy(h.cells, vals)
	riverPass(h)
	// (1,1) has the lower (2,2) so it is not a source; (2,2) has no lower neighbour.
	// (2,2) writes 0.1 into its first lowest neighbour in dx-outer order: (1,1).
	v, _ := h.At(1, 1)
	require.Equal(t, 0.1, v)
}

func TestClassify_Thresholds(t *testing.T) {
	cases := []struct {
		v    float64
		want TileClass
	}{
		{0, ClassDeepWater},
		{0.029, ClassDeepWater},
		{0.03, ClassWater},
		{-0.05, ClassWater},
		{0.09, ClassShallowWater},
		{0.15, ClassSand},
		{0.5, ClassGrass},
		{0.6, ClassMountain},
		{1.0, ClassMountain},
		{-1.0, ClassMountain},
	}
	for _, tc := range cases {
		got, err := Classify(tc.v)
		require.NoError(t, err, "v=%v", tc.v)
		require.Equal(t, tc.want, got, "v=%v", tc.v)
	}
}

func TestClassify_OutOfDomain(t *testing.T) {
	for _, v := range []float64{1.0001, -2, math.NaN(), math.Inf(1)} {
		_, err := Classify(v)
		require.True(t, errors.Is(err, ErrOutOfDomain), "v=%v", v)
	}
}

func TestClassifyField_FailsOnFirstViolation(t *testing.T) {
	h := Flat(4, 0.5)
	h.Set(3, 1, 1.5)
	_, err := ClassifyField(h)
	require.ErrorIs(t, err, ErrOutOfDomain)
	require.Contains(t, err.Error(), "(3,1)")
}

func TestHeightField_OutOfBounds(t *testing.T) {
	h := Flat(4, 0.5)
	_, ok := h.At(-1, 0)
	require.False(t, ok)
	_, ok = h.At(0, 4)
	require.False(t, ok)
	h.Set(9, 9, 1) // ignored
	require.Equal(t, 0.5, h.Range().Max)
}

func TestParams_Validate(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	p.Size = 0
	require.Error(t, p.Validate())
}

func TestErode_CanLeaveUnitRangeUntilSquashed(t *testing.T) {
	h := Flat(6, 0.999)
	Erode(h, 2, 0.01, 0)
	require.Greater(t, h.Range().Max, 1.0)
	_, err := ClassifyField(h)
	require.ErrorIs(t, err, ErrOutOfDomain)

	require.Equal(t, 36, Squash(h))
	r := h.Range()
	require.GreaterOrEqual(t, r.Min, 0.0)
	require.LessOrEqual(t, r.Max, 1.0)
	_, err = ClassifyField(h)
	require.NoError(t, err)
}

func TestGenerate_ManySeedsStayInRange(t *testing.T) {
	p := DefaultParams()
	p.Size = 160
	for seed := uint32(0); seed < 40; seed++ {
		h, _, rep, err := Generate(seed, p)
		require.NoError(t, err, "seed %d", seed)
		r := h.Range()
		require.GreaterOrEqual(t, r.Min, 0.0, "seed %d", seed)
		require.LessOrEqual(t, r.Max, 1.0, "seed %d", seed)
		require.GreaterOrEqual(t, rep.CenteredMean, 0.3, "seed %d", seed)
		require.LessOrEqual(t, rep.CenteredMean, 0.7, "seed %d", seed)
		require.Equal(t, r, rep.Final)
	}
}
