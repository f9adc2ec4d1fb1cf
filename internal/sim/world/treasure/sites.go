package treasure

import (
	"math/rand/v2"

	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/logic/rng"
)

// Site is a hidden reward buried at a tile.
type Site struct {
	ID     int        `json:"id"`
	Tile   model.Tile `json:"tile"`
	Reward Reward     `json:"reward"`
}

type SiteParams struct {
	MinSites int
	MaxSites int // exclusive
	Reward   RewardParams
}

func DefaultSiteParams() SiteParams {
	return SiteParams{MinSites: 200, MaxSites: 500, Reward: DefaultRewardParams()}
}

// ScatterSites places sites uniformly over the full extent; two sites may share a tile.
// Positions come from sites and rewards from rewards; both streams advance independently.
func ScatterSites(sites, rewards *rand.Rand, extent int, p SiteParams) []Site {
	n := rng.IntRange(sites, p.MinSites, p.MaxSites)
	out := make([]Site, 0, n)
	for i := 0; i < n; i++ {
		x := sites.IntN(extent)
		y := sites.IntN(extent)
		out = append(out, Site{ID: i, Tile: model.Tile{X: x, Y: y}, Reward: GenerateReward(rewards, p.Reward)})
	}
	return out
}

// Generate scatters the sites of a world seed using the standard stream derivation.
func Generate(seed uint32, extent int, p SiteParams) []Site {
	return ScatterSites(rng.New(uint64(seed)), rng.New(rng.Pack(seed)), extent, p)
}
