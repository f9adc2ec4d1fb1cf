package protocol

// ACT (controller -> server)
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	ActID           string       `json:"act_id,omitempty"`
	Tick            uint64       `json:"tick"`
	Commands        []CommandReq `json:"commands"`
}

type CommandReq struct {
	Type   string     `json:"type"`
	Slot   int        `json:"slot"`
	Kind   string     `json:"kind,omitempty"`
	Target [2]float64 `json:"target"`
	UnitID uint64     `json:"unit_id,omitempty"`
}

// OBS (server -> every session) is one simulated tick.
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Score           int    `json:"score"`
	Digest          string `json:"digest"`

	Units         []UnitObs  `json:"units"`
	SpawnRequests []SpawnObs `json:"spawn_requests,omitempty"`
	Events        []Event    `json:"events,omitempty"`
	Revealed      [][2]int   `json:"revealed,omitempty"`
	Ignored       int        `json:"ignored,omitempty"`
	Excavated     [][2]int   `json:"excavated,omitempty"`
}

type UnitObs struct {
	ID         uint64         `json:"id"`
	Slot       int            `json:"slot"`
	Kind       string         `json:"kind"`
	Deployment string         `json:"deployment"`
	Pos        [2]float64     `json:"pos"`
	Tile       [2]int         `json:"tile"`
	Moving     bool           `json:"moving"`
	Digging    float64        `json:"digging,omitempty"`
	Stats      map[string]int `json:"stats"`
}

type SpawnObs struct {
	UnitID uint64     `json:"unit_id"`
	Count  int        `json:"count"`
	Pos    [2]float64 `json:"pos"`
}

// Event is a loosely typed notification ("ARRIVED", "DIG", "SUMMON", ...).
type Event map[string]any
