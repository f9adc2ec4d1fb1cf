package gen

import "fmt"

// Params configures terrain generation.
type Params struct {
	Size        int
	Octaves     int
	Frequency   float64
	Lacunarity  float64
	Persistence float64

	ErosionIterations int
	Rainfall          float64

	// Workers bounds row concurrency; 0 means GOMAXPROCS.
	Workers int
}

func DefaultParams() Params {
	return Params{
		Size:              1000,
		Octaves:           6,
		Frequency:         1.0,
		Lacunarity:        2.0,
		Persistence:       0.5,
		ErosionIterations: 2,
		Rainfall:          0.01,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Size <= 0:
		return fmt.Errorf("terrain size must be > 0 (got %d)", p.Size)
	case p.Octaves <= 0:
		return fmt.Errorf("terrain octaves must be > 0 (got %d)", p.Octaves)
	case p.ErosionIterations < 0:
		return fmt.Errorf("erosion iterations must be >= 0 (got %d)", p.ErosionIterations)
	}
	return nil
}

// Report records what each generation stage did.
type Report struct {
	Seed       uint32
	Sampled    Range
	PreMean    float64
	Recentered bool
	Squashed   int
	Final      Range
	Classes    map[TileClass]int

	// CenteredMean is the field mean right after recentering.
	CenteredMean float64
	// ErosionSquashed counts cells pushed back into [0,1] after erosion added rainfall.
	ErosionSquashed int
}

// Generate builds a height field and its class overlay. Identical inputs give bit-identical output.
func Generate(seed uint32, p Params) (*HeightField, *ClassMap, Report, error) {
	rep := Report{Seed: seed}
	if err := p.Validate(); err != nil {
		return nil, nil, rep, err
	}
	h := Sample(seed, p)
	rep.Sampled = h.Range()
	rep.PreMean, rep.Recentered = Recenter(h)
	rep.CenteredMean = h.Range().Mean
	rep.Squashed = Squash(h)
	Erode(h, p.ErosionIterations, p.Rainfall, p.Workers)
	rep.ErosionSquashed = Squash(h)
	rep.Final = h.Range()

	classes, err := ClassifyField(h)
	if err != nil {
		return nil, nil, rep, err
	}
	rep.Classes = classes.Histogram()
	return h, classes, rep, nil
}
