package gen

import "math"

// HeightField is a dense square grid of heights stored row-major (index = y*size + x).
// It is mutated only by the generation passes in this package and is read-only afterwards.
type HeightField struct {
	size  int
	cells []float64
}

func NewHeightField(size int) *HeightField {
	if size < 0 {
		size = 0
	}
	return &HeightField{size: size, cells: make([]float64, size*size)}
}

// Flat returns a field where every cell holds v.
func Flat(size int, v float64) *HeightField {
	h := NewHeightField(size)
	for i := range h.cells {
		h.cells[i] = v
	}
	return h
}

func (h *HeightField) Size() int { return h.size }

func (h *HeightField) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < h.size && y < h.size
}

// At returns the height at (x, y); ok is false outside the field.
func (h *HeightField) At(x, y int) (float64, bool) {
	if !h.InBounds(x, y) {
		return 0, false
	}
	return h.cells[y*h.size+x], true
}

func (h *HeightField) get(x, y int) float64 { return h.cells[y*h.size+x] }

func (h *HeightField) Set(x, y int, v float64) {
	if !h.InBounds(x, y) {
		return
	}
	h.cells[y*h.size+x] = v
}

func (h *HeightField) Clone() *HeightField {
	out := &HeightField{size: h.size, cells: make([]float64, len(h.cells))}
	copy(out.cells, h.cells)
	return out
}

// Equal reports bit-identical contents.
func (h *HeightField) Equal(o *HeightField) bool {
	if h == nil || o == nil {
		return h == o
	}
	if h.size != o.size {
		return false
	}
	for i := range h.cells {
		if math.Float64bits(h.cells[i]) != math.Float64bits(o.cells[i]) {
			return false
		}
	}
	return true
}

// Range is the min/max/mean of a field, accumulated in index order.
type Range struct {
	Min  float64
	Max  float64
	Mean float64
}

func (h *HeightField) Range() Range {
	if len(h.cells) == 0 {
		return Range{}
	}
	r := Range{Min: math.MaxFloat64, Max: -math.MaxFloat64}
	sum := 0.0
	for _, v := range h.cells {
		sum += v
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	r.Mean = sum / float64(len(h.cells))
	return r
}
