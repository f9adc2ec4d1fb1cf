package gen

import (
	"runtime"

	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/sync/errgroup"
)

// fbm layers one simplex generator per octave; octave i is seeded with seed+i.
type fbm struct {
	octaves     []opensimplex.Noise
	frequency   float64
	lacunarity  float64
	persistence float64
}

func newFBM(seed uint32, p Params) *fbm {
	n := p.Octaves
	if n < 1 {
		n = 1
	}
	f := &fbm{
		octaves:     make([]opensimplex.Noise, n),
		frequency:   p.Frequency,
		lacunarity:  p.Lacunarity,
		persistence: p.Persistence,
	}
	for i := range f.octaves {
		f.octaves[i] = opensimplex.New(int64(seed) + int64(i))
	}
	return f
}

func (f *fbm) eval(x, y float64) float64 {
	total := 0.0
	norm := 0.0
	amp := 1.0
	freq := f.frequency
	for _, o := range f.octaves {
		total += o.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= f.persistence
		freq *= f.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}

// Sample fills a Size×Size field with fractal noise over the plane [-1,1]×[-1,1].
// Rows are independent, so they are sampled concurrently; each cell is a pure function of
// (seed, x, y) and the result does not depend on scheduling.
func Sample(seed uint32, p Params) *HeightField {
	h := NewHeightField(p.Size)
	if p.Size == 0 {
		return h
	}
	f := newFBM(seed, p)
	step := 2.0 / float64(p.Size)

	var g errgroup.Group
	g.SetLimit(workers(p.Workers))
	for y := 0; y < p.Size; y++ {
		y := y
		g.Go(func() error {
			ny := -1.0 + step*float64(y)
			row := h.cells[y*p.Size : (y+1)*p.Size]
			for x := range row {
				row[x] = f.eval(-1.0+step*float64(x), ny)
			}
			return nil
		})
	}
	_ = g.Wait()
	return h
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
