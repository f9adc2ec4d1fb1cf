package world

import (
	"fmt"

	"digworld.ai/internal/sim/world/placement"
	"digworld.ai/internal/sim/world/terrain/gen"
	"digworld.ai/internal/sim/world/treasure"
)

const DefaultSeed uint32 = 442

type WorldConfig struct {
	ID         string
	Seed       uint32
	Extent     int
	TileSize   float64
	TickRateHz int
	// SpeedScale multiplies overworld speed when integrating positions.
	SpeedScale float64

	Slots              int
	EarlyGameThreshold int
	BaseRevealRadius   int
	// RivalRevealRadius < 0 leaves rival bases hidden.
	RivalRevealRadius int

	CollisionX float64
	CollisionY float64
	Nudge      float64
	SpawnStepX float64
	SpawnStepY float64
	// MaxVisualsPerUnit caps how many member visuals a unit requests.
	MaxVisualsPerUnit int
	// SpawnRetryTicks re-sends a spawn request left unanswered this long; 0 disables.
	SpawnRetryTicks int

	Terrain   gen.Params
	Placement placement.Params
	Sites     treasure.SiteParams
}

func DefaultConfig() WorldConfig {
	return WorldConfig{
		ID:                 "world_1",
		Seed:               DefaultSeed,
		Extent:             1000,
		TileSize:           32,
		TickRateHz:         20,
		SpeedScale:         20,
		Slots:              treasure.Slots,
		EarlyGameThreshold: 3,
		BaseRevealRadius:   6,
		RivalRevealRadius:  -1,
		CollisionX:         7,
		CollisionY:         17,
		Nudge:              0.1,
		SpawnStepX:         0.5,
		SpawnStepY:         0.1,
		MaxVisualsPerUnit:  64,
		SpawnRetryTicks:    40,
		Terrain:            gen.DefaultParams(),
		Placement:          placement.DefaultParams(),
		Sites:              treasure.DefaultSiteParams(),
	}
}

func (c WorldConfig) Validate() error {
	switch {
	case c.Extent <= 0:
		return fmt.Errorf("extent must be > 0 (got %d)", c.Extent)
	case c.TileSize <= 0:
		return fmt.Errorf("tile_size must be > 0 (got %v)", c.TileSize)
	case c.TickRateHz <= 0:
		return fmt.Errorf("tick_rate_hz must be > 0 (got %d)", c.TickRateHz)
	case c.Slots < 2:
		return fmt.Errorf("slots must be >= 2 (got %d)", c.Slots)
	case c.Placement.MaxAttempts <= 0:
		return fmt.Errorf("placement max_attempts must be > 0")
	case c.Sites.MaxSites < c.Sites.MinSites:
		return fmt.Errorf("sites range invalid: [%d,%d)", c.Sites.MinSites, c.Sites.MaxSites)
	}
	return nil
}

// FixedDT is the simulation step used by Run.
func (c WorldConfig) FixedDT() float64 { return 1.0 / float64(c.TickRateHz) }
