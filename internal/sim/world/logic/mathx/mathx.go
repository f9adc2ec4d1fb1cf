package mathx

import "math"

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ScalePermille maps a permille fraction of n onto [0, n], rounding down.
func ScalePermille(n, permille int) int {
	if permille <= 0 || n <= 0 {
		return 0
	}
	if permille >= 1000 {
		return n
	}
	return int(int64(n) * int64(permille) / 1000)
}

// Sigmoid is the logistic squashing function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
