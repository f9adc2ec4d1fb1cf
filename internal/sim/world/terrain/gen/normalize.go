package gen

import "digworld.ai/internal/sim/world/logic/mathx"

const (
	meanLow    = 0.3
	meanHigh   = 0.7
	meanTarget = 0.5
)

// Recenter shifts every cell by (0.5 - mean) when the mean falls outside [0.3, 0.7].
// It returns the mean before the shift and whether a shift was applied.
func Recenter(h *HeightField) (mean float64, shifted bool) {
	mean = h.Range().Mean
	if mean >= meanLow && mean <= meanHigh {
		return mean, false
	}
	diff := meanTarget - mean
	for i := range h.cells {
		h.cells[i] += diff
	}
	return mean, true
}

// Squash applies the logistic function to cells outside [0, 1] and leaves in-range cells alone.
// It returns the number of cells it rewrote.
func Squash(h *HeightField) int {
	r := h.Range()
	if r.Min >= 0 && r.Max <= 1 {
		return 0
	}
	n := 0
	for i, v := range h.cells {
		if v < 0 || v > 1 {
			h.cells[i] = mathx.Sigmoid(v)
			n++
		}
	}
	return n
}
