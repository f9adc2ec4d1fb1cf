package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/placement"
)

//go:embed tuning.schema.json
var schemaJSON string

type Tuning struct {
	World     World     `yaml:"world"`
	Terrain   Terrain   `yaml:"terrain"`
	Placement Placement `yaml:"placement"`
	Treasure  Treasure  `yaml:"treasure"`
	Units     Units     `yaml:"units"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

type World struct {
	ID         string  `yaml:"id"`
	Seed       uint32  `yaml:"seed"`
	Extent     int     `yaml:"extent"`
	TileSize   float64 `yaml:"tile_size"`
	TickRateHz int     `yaml:"tick_rate_hz"`
	SpeedScale float64 `yaml:"speed_scale"`
}

type Terrain struct {
	Octaves           int     `yaml:"octaves"`
	Frequency         float64 `yaml:"frequency"`
	Lacunarity        float64 `yaml:"lacunarity"`
	Persistence       float64 `yaml:"persistence"`
	ErosionIterations int     `yaml:"erosion_iterations"`
	Rainfall          float64 `yaml:"rainfall"`
	Workers           int     `yaml:"workers"`
}

type Placement struct {
	Player      placement.Window `yaml:"player"`
	RivalFirst  placement.Window `yaml:"rival_first"`
	RivalRetry  placement.Window `yaml:"rival_retry"`
	PlayerMinH  float64          `yaml:"player_min_h"`
	PlayerMaxH  float64          `yaml:"player_max_h"`
	RivalMinH   float64          `yaml:"rival_min_h"`
	RivalsMin   int              `yaml:"rivals_min"`
	RivalsMax   int              `yaml:"rivals_max"`
	MaxAttempts int              `yaml:"max_attempts"`
}

type Treasure struct {
	SitesMin     int     `yaml:"sites_min"`
	SitesMax     int     `yaml:"sites_max"`
	BoonMean     float64 `yaml:"boon_mean"`
	MinBoons     int     `yaml:"min_boons"`
	MaxBoons     int     `yaml:"max_boons"`
	MultiplyProb float64 `yaml:"multiply_prob"`
	SummonProb   float64 `yaml:"summon_prob"`
}

type Units struct {
	Slots              int     `yaml:"slots"`
	EarlyGameThreshold int     `yaml:"early_game_threshold"`
	BaseRevealRadius   int     `yaml:"base_reveal_radius"`
	RivalRevealRadius  int     `yaml:"rival_reveal_radius"`
	CollisionX         float64 `yaml:"collision_x"`
	CollisionY         float64 `yaml:"collision_y"`
	Nudge              float64 `yaml:"nudge"`
	SpawnStepX         float64 `yaml:"spawn_step_x"`
	SpawnStepY         float64 `yaml:"spawn_step_y"`
	MaxVisualsPerUnit  int     `yaml:"max_visuals_per_unit"`
	SpawnRetryTicks    int     `yaml:"spawn_retry_ticks"`
}

// RateLimits bounds controller input on the transport.
type RateLimits struct {
	ActPerSecond float64 `yaml:"act_per_second"`
	ActBurst     int     `yaml:"act_burst"`
}

// Defaults mirrors world.DefaultConfig.
func Defaults() Tuning {
	c := world.DefaultConfig()
	return Tuning{
		World: World{
			ID:         c.ID,
			Seed:       c.Seed,
			Extent:     c.Extent,
			TileSize:   c.TileSize,
			TickRateHz: c.TickRateHz,
			SpeedScale: c.SpeedScale,
		},
		Terrain: Terrain{
			Octaves:           c.Terrain.Octaves,
			Frequency:         c.Terrain.Frequency,
			Lacunarity:        c.Terrain.Lacunarity,
			Persistence:       c.Terrain.Persistence,
			ErosionIterations: c.Terrain.ErosionIterations,
			Rainfall:          c.Terrain.Rainfall,
			Workers:           c.Terrain.Workers,
		},
		Placement: Placement{
			Player:      c.Placement.Player,
			RivalFirst:  c.Placement.RivalFirst,
			RivalRetry:  c.Placement.RivalRetry,
			PlayerMinH:  c.Placement.PlayerMinH,
			PlayerMaxH:  c.Placement.PlayerMaxH,
			RivalMinH:   c.Placement.RivalMinH,
			RivalsMin:   c.Placement.RivalsMin,
			RivalsMax:   c.Placement.RivalsMax,
			MaxAttempts: c.Placement.MaxAttempts,
		},
		Treasure: Treasure{
			SitesMin:     c.Sites.MinSites,
			SitesMax:     c.Sites.MaxSites,
			BoonMean:     c.Sites.Reward.BoonMean,
			MinBoons:     c.Sites.Reward.MinBoons,
			MaxBoons:     c.Sites.Reward.MaxBoons,
			MultiplyProb: c.Sites.Reward.MultiplyProb,
			SummonProb:   c.Sites.Reward.SummonProb,
		},
		Units: Units{
			Slots:              c.Slots,
			EarlyGameThreshold: c.EarlyGameThreshold,
			BaseRevealRadius:   c.BaseRevealRadius,
			RivalRevealRadius:  c.RivalRevealRadius,
			CollisionX:         c.CollisionX,
			CollisionY:         c.CollisionY,
			Nudge:              c.Nudge,
			SpawnStepX:         c.SpawnStepX,
			SpawnStepY:         c.SpawnStepY,
			MaxVisualsPerUnit:  c.MaxVisualsPerUnit,
			SpawnRetryTicks:    c.SpawnRetryTicks,
		},
		RateLimits: RateLimits{ActPerSecond: 20, ActBurst: 40},
	}
}

// Load reads path over Defaults, checks it against the embedded schema and validates it.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := validateSchema(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("tuning.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("tuning.schema.json")
}

// validateSchema converts the YAML document to its JSON data model before validation.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return s.Validate(v)
}

// Validate checks cross-field constraints the schema cannot express.
func (t Tuning) Validate() error {
	p := t.Placement
	switch {
	case p.PlayerMinH >= p.PlayerMaxH:
		return fmt.Errorf("placement.player_min_h must be < player_max_h")
	case p.RivalsMax <= p.RivalsMin:
		return fmt.Errorf("placement.rivals_max must be > rivals_min")
	case t.Treasure.SitesMax <= t.Treasure.SitesMin:
		return fmt.Errorf("treasure.sites_max must be > sites_min")
	case t.Treasure.MaxBoons < t.Treasure.MinBoons:
		return fmt.Errorf("treasure.max_boons must be >= min_boons")
	}
	for name, w := range map[string]placement.Window{"player": p.Player, "rival_first": p.RivalFirst, "rival_retry": p.RivalRetry} {
		if w.HiPermille <= w.LoPermille {
			return fmt.Errorf("placement.%s window is empty", name)
		}
	}
	return t.WorldConfig().Validate()
}

// WorldConfig maps the tuning onto the simulation configuration.
func (t Tuning) WorldConfig() world.WorldConfig {
	c := world.DefaultConfig()
	c.ID = t.World.ID
	c.Seed = t.World.Seed
	c.Extent = t.World.Extent
	c.TileSize = t.World.TileSize
	c.TickRateHz = t.World.TickRateHz
	c.SpeedScale = t.World.SpeedScale

	c.Terrain.Size = t.World.Extent
	c.Terrain.Octaves = t.Terrain.Octaves
	c.Terrain.Frequency = t.Terrain.Frequency
	c.Terrain.Lacunarity = t.Terrain.Lacunarity
	c.Terrain.Persistence = t.Terrain.Persistence
	c.Terrain.ErosionIterations = t.Terrain.ErosionIterations
	c.Terrain.Rainfall = t.Terrain.Rainfall
	c.Terrain.Workers = t.Terrain.Workers

	c.Placement = placement.Params{
		Player:      t.Placement.Player,
		RivalFirst:  t.Placement.RivalFirst,
		RivalRetry:  t.Placement.RivalRetry,
		PlayerMinH:  t.Placement.PlayerMinH,
		PlayerMaxH:  t.Placement.PlayerMaxH,
		RivalMinH:   t.Placement.RivalMinH,
		RivalsMin:   t.Placement.RivalsMin,
		RivalsMax:   t.Placement.RivalsMax,
		MaxAttempts: t.Placement.MaxAttempts,
	}

	c.Sites.MinSites = t.Treasure.SitesMin
	c.Sites.MaxSites = t.Treasure.SitesMax
	c.Sites.Reward.BoonMean = t.Treasure.BoonMean
	c.Sites.Reward.MinBoons = t.Treasure.MinBoons
	c.Sites.Reward.MaxBoons = t.Treasure.MaxBoons
	c.Sites.Reward.MultiplyProb = t.Treasure.MultiplyProb
	c.Sites.Reward.SummonProb = t.Treasure.SummonProb

	c.Slots = t.Units.Slots
	c.EarlyGameThreshold = t.Units.EarlyGameThreshold
	c.BaseRevealRadius = t.Units.BaseRevealRadius
	c.RivalRevealRadius = t.Units.RivalRevealRadius
	c.CollisionX = t.Units.CollisionX
	c.CollisionY = t.Units.CollisionY
	c.Nudge = t.Units.Nudge
	c.SpawnStepX = t.Units.SpawnStepX
	c.SpawnStepY = t.Units.SpawnStepY
	c.MaxVisualsPerUnit = t.Units.MaxVisualsPerUnit
	c.SpawnRetryTicks = t.Units.SpawnRetryTicks
	return c
}
