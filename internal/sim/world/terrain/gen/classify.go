package gen

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfDomain = errors.New("height outside classifier domain")

// TileClass is the terrain texture index of a cell.
type TileClass uint8

const (
	ClassDeepWater TileClass = iota
	ClassWater
	ClassShallowWater
	ClassSand
	ClassGrass
	ClassMountain
)

var classNames = [...]string{"deep_water", "water", "shallow_water", "sand", "grass", "mountain"}

func (c TileClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Classify partitions |v| into tile classes. Heights beyond [-1,1] are a generation error.
func Classify(v float64) (TileClass, error) {
	a := math.Abs(v)
	switch {
	case math.IsNaN(a):
		return 0, fmt.Errorf("%w: NaN", ErrOutOfDomain)
	case a < 0.03:
		return ClassDeepWater, nil
	case a < 0.08:
		return ClassWater, nil
	case a < 0.1:
		return ClassShallowWater, nil
	case a < 0.2:
		return ClassSand, nil
	case a < 0.6:
		return ClassGrass, nil
	case a <= 1.0:
		return ClassMountain, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrOutOfDomain, v)
	}
}

// ClassMap is the per-tile class overlay, row-major like HeightField.
type ClassMap struct {
	size    int
	classes []TileClass
}

// ClassifyField classifies every cell and fails on the first out-of-domain height.
func ClassifyField(h *HeightField) (*ClassMap, error) {
	m := &ClassMap{size: h.size, classes: make([]TileClass, len(h.cells))}
	for i, v := range h.cells {
		c, err := Classify(v)
		if err != nil {
			return nil, fmt.Errorf("tile (%d,%d): %w", i%h.size, i/h.size, err)
		}
		m.classes[i] = c
	}
	return m, nil
}

func (m *ClassMap) Size() int { return m.size }

func (m *ClassMap) At(x, y int) (TileClass, bool) {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return 0, false
	}
	return m.classes[y*m.size+x], true
}

// Row returns the classes of row y as bytes, or nil when out of range.
func (m *ClassMap) Row(y int) []byte {
	if y < 0 || y >= m.size {
		return nil
	}
	out := make([]byte, m.size)
	for i, c := range m.classes[y*m.size : (y+1)*m.size] {
		out[i] = byte(c)
	}
	return out
}

// Histogram counts tiles per class.
func (m *ClassMap) Histogram() map[TileClass]int {
	out := map[TileClass]int{}
	for _, c := range m.classes {
		out[c]++
	}
	return out
}
