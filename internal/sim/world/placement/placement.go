// Package placement positions the player base and the rival bases on a generated height field.
package placement

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/logic/mathx"
	"digworld.ai/internal/sim/world/logic/rng"
)

var ErrNoPlacement = errors.New("no valid placement found")

// Heights is the read-only view of terrain placement needs.
type Heights interface {
	Size() int
	At(x, y int) (float64, bool)
}

// Window is a half-open square sampling window expressed in permille of the extent.
type Window struct {
	LoPermille int `yaml:"lo_permille"`
	HiPermille int `yaml:"hi_permille"`
}

func (w Window) bounds(extent int) (int, int) {
	return mathx.ScalePermille(extent, w.LoPermille), mathx.ScalePermille(extent, w.HiPermille)
}

type Params struct {
	Player      Window
	RivalFirst  Window
	RivalRetry  Window
	PlayerMinH  float64
	PlayerMaxH  float64
	RivalMinH   float64
	RivalsMin   int
	RivalsMax   int // exclusive
	MaxAttempts int
}

func DefaultParams() Params {
	return Params{
		Player:      Window{LoPermille: 200, HiPermille: 800},
		RivalFirst:  Window{LoPermille: 100, HiPermille: 900},
		RivalRetry:  Window{LoPermille: 200, HiPermille: 800},
		PlayerMinH:  0.1,
		PlayerMaxH:  0.7,
		RivalMinH:   0.1,
		RivalsMin:   10,
		RivalsMax:   20,
		MaxAttempts: 100000,
	}
}

// Bases is the fixed set of base locations; created once and never changed.
type Bases struct {
	Player model.Tile   `json:"player"`
	Rivals []model.Tile `json:"rivals"`
}

// Place finds the player base and the rival bases. The player stream is seeded from the xxh3
// sub-seed of the world seed; rivals continue on the same stream.
func Place(h Heights, seed uint32, p Params) (Bases, error) {
	r := rng.New(rng.Hashed(seed))
	extent := h.Size()

	player, err := sample(r, h, extent, p.Player, p.Player, p.MaxAttempts, func(v float64) bool {
		return v > p.PlayerMinH && v < p.PlayerMaxH
	})
	if err != nil {
		return Bases{}, fmt.Errorf("player base: %w", err)
	}

	n := rng.IntRange(r, p.RivalsMin, p.RivalsMax)
	out := Bases{Player: player, Rivals: make([]model.Tile, 0, n)}
	for i := 0; i < n; i++ {
		t, err := sample(r, h, extent, p.RivalFirst, p.RivalRetry, p.MaxAttempts, func(v float64) bool {
			return v > p.RivalMinH
		})
		if err != nil {
			return Bases{}, fmt.Errorf("rival base %d: %w", i, err)
		}
		out.Rivals = append(out.Rivals, t)
	}
	return out, nil
}

// sample draws the first candidate from first and every retry from retry until ok accepts the height.
func sample(r *rand.Rand, h Heights, extent int, first, retry Window, maxAttempts int, ok func(float64) bool) (model.Tile, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	w := first
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lo, hi := w.bounds(extent)
		x := rng.IntRange(r, lo, hi)
		y := rng.IntRange(r, lo, hi)
		if v, in := h.At(x, y); in && ok(v) {
			return model.Tile{X: x, Y: y}, nil
		}
		w = retry
	}
	return model.Tile{}, ErrNoPlacement
}
