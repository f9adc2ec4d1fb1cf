package mathx

import (
	"math"
	"testing"
)

func TestScalePermille(t *testing.T) {
	cases := []struct {
		n, permille, want int
	}{
		{1000, 200, 200},
		{1000, 800, 800},
		{1000, 0, 0},
		{1000, 1200, 1000},
		{128, 100, 12},
		{128, 900, 115},
		{0, 500, 0},
	}
	for _, c := range cases {
		if got := ScalePermille(c.n, c.permille); got != c.want {
			t.Fatalf("ScalePermille(%d,%d)=%d want %d", c.n, c.permille, got, c.want)
		}
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); got != 0.5 {
		t.Fatalf("Sigmoid(0)=%v", got)
	}
	for _, x := range []float64{-5, -1.2, -0.01, 1.01, 3, 40} {
		v := Sigmoid(x)
		if v <= 0 || v >= 1 || math.IsNaN(v) {
			t.Fatalf("Sigmoid(%v)=%v out of (0,1)", x, v)
		}
	}
}

func TestClamp(t *testing.T) {
	if ClampInt(-3, 0, 5) != 0 || ClampInt(9, 0, 5) != 5 || ClampInt(2, 0, 5) != 2 {
		t.Fatalf("ClampInt mismatch")
	}
	if ClampFloat(7.5, 1, 6) != 6 || ClampFloat(0.2, 1, 6) != 1 {
		t.Fatalf("ClampFloat mismatch")
	}
}
