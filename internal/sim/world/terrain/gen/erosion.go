package gen

import "golang.org/x/sync/errgroup"

// Erode runs iterations rounds of rainfall smoothing followed by a single river pass.
// Each round reads the previous round's grid only, so rows are computed concurrently.
func Erode(h *HeightField, iterations int, rainfall float64, nworkers int) {
	if h.size == 0 {
		return
	}
	src := h.cells
	dst := make([]float64, len(src))
	for it := 0; it < iterations; it++ {
		erodeRound(h.size, src, dst, rainfall, workers(nworkers))
		src, dst = dst, src
	}
	if &src[0] != &h.cells[0] {
		copy(h.cells, src)
	}
	riverPass(h)
}

func erodeRound(size int, src, dst []float64, rainfall float64, limit int) {
	var g errgroup.Group
	g.SetLimit(limit)
	for y := 0; y < size; y++ {
		y := y
		g.Go(func() error {
			for x := 0; x < size; x++ {
				v := src[y*size+x]
				lo := v
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= size || ny >= size {
							continue
						}
						if n := src[ny*size+nx]; n < lo {
							lo = n
						}
					}
				}
				dst[y*size+x] = (v + rainfall + lo) / 2
			}
			return nil
		})
	}
	_ = g.Wait()
}

// riverPass finds every cell without a strictly lower neighbour, then walks those sources in
// scan order and raises (or lowers) each source's lowest neighbour to the source's current value.
// Sources are fixed before any write; the writes themselves are sequential.
func riverPass(h *HeightField) {
	size := h.size
	var sources []int
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !hasLowerNeighbour(h, x, y) {
				sources = append(sources, y*size+x)
			}
		}
	}
	for _, idx := range sources {
		x, y := idx%size, idx/size
		lx, ly, ok := lowestNeighbour(h, x, y)
		if !ok {
			continue
		}
		h.cells[ly*size+lx] = h.cells[idx]
	}
}

func hasLowerNeighbour(h *HeightField, x, y int) bool {
	v := h.get(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if n, ok := h.At(x+dx, y+dy); ok && n < v {
				return true
			}
		}
	}
	return false
}

// lowestNeighbour returns the first minimum among the in-bounds 8 neighbours (dx outer, dy inner).
func lowestNeighbour(h *HeightField, x, y int) (int, int, bool) {
	bx, by := 0, 0
	best := 0.0
	found := false
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n, ok := h.At(x+dx, y+dy)
			if !ok {
				continue
			}
			if !found || n < best {
				bx, by, best, found = x+dx, y+dy, n, true
			}
		}
	}
	return bx, by, found
}
