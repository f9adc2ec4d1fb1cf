package world

import (
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/treasure"
)

// SpawnRequest asks the host to create Count member visuals for a unit.
type SpawnRequest struct {
	UnitID uint64     `json:"unit_id"`
	Slot   int        `json:"slot"`
	Kind   string     `json:"kind"`
	Count  int        `json:"count"`
	Pos    model.Vec2 `json:"pos"`
}

type Arrival struct {
	UnitID uint64     `json:"unit_id"`
	Tile   model.Tile `json:"tile"`
}

// DigEvent is a resolved excavation. Reward carries the slot the boons were applied to.
type DigEvent struct {
	UnitID     uint64          `json:"unit_id"`
	Tile       model.Tile      `json:"tile"`
	SiteID     int             `json:"site_id"`
	Reward     treasure.Reward `json:"reward"`
	Overridden bool            `json:"overridden,omitempty"`
}

// SiteExcavated tells the host to hide the site marker at Tile.
type SiteExcavated struct {
	Tile    model.Tile `json:"tile"`
	Removed int        `json:"removed"`
}

// TickResult is everything a single tick produced.
type TickResult struct {
	Tick     uint64    `json:"tick"`
	DT       float64   `json:"dt"`
	Commands []Command `json:"commands,omitempty"`
	Ignored  int       `json:"ignored,omitempty"`

	SpawnRequests []SpawnRequest       `json:"spawn_requests,omitempty"`
	Arrivals      []Arrival            `json:"arrivals,omitempty"`
	Digs          []DigEvent           `json:"digs,omitempty"`
	Excavated     []SiteExcavated      `json:"excavated,omitempty"`
	Summons       []treasure.Elemental `json:"summons,omitempty"`
	Revealed      []model.Tile         `json:"revealed,omitempty"`

	Score  int    `json:"score"`
	Digest string `json:"digest"`
}
