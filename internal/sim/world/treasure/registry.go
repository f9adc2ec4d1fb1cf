package treasure

import "digworld.ai/internal/sim/world/kernel/model"

// Found is a resolved excavation in the order it happened.
type Found struct {
	Site   Site   `json:"site"`
	Tick   uint64 `json:"tick"`
	UnitID uint64 `json:"unit_id"`
	// Reward is the reward as applied, including any slot override.
	Reward Reward `json:"reward"`
}

// Registry tracks the sites still buried and the log of sites already dug up.
// The remaining set only shrinks.
type Registry struct {
	remaining []Site
	byTile    map[model.Tile]int
	found     []Found
}

func NewRegistry(sites []Site) *Registry {
	r := &Registry{remaining: append([]Site(nil), sites...), byTile: map[model.Tile]int{}}
	for _, s := range r.remaining {
		r.byTile[s.Tile]++
	}
	return r
}

func (r *Registry) Has(t model.Tile) bool { return r.byTile[t] > 0 }

// At returns the first remaining site on t in generation order.
func (r *Registry) At(t model.Tile) (Site, bool) {
	if !r.Has(t) {
		return Site{}, false
	}
	for _, s := range r.remaining {
		if s.Tile == t {
			return s, true
		}
	}
	return Site{}, false
}

// Remove drops every remaining site on t and returns how many were dropped.
func (r *Registry) Remove(t model.Tile) int {
	if !r.Has(t) {
		return 0
	}
	kept := r.remaining[:0]
	n := 0
	for _, s := range r.remaining {
		if s.Tile == t {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.remaining = kept
	delete(r.byTile, t)
	return n
}

func (r *Registry) Record(f Found) { r.found = append(r.found, f) }

func (r *Registry) Remaining() int  { return len(r.remaining) }
func (r *Registry) FoundCount() int { return len(r.found) }

func (r *Registry) FoundLog() []Found {
	return append([]Found(nil), r.found...)
}

// Sites returns a copy of the remaining sites in generation order.
func (r *Registry) Sites() []Site {
	return append([]Site(nil), r.remaining...)
}
