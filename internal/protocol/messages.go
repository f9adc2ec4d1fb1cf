package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ClientName      string     `json:"client_name"`
	Role            string     `json:"role"`
	MaxQueue        int        `json:"max_queue,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	// ResumeToken reclaims the controller seat after a reconnect.
	ResumeToken string `json:"resume_token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Role            string      `json:"role"`
	ResumeToken     string      `json:"resume_token,omitempty"`
	WorldParams     WorldParams `json:"world_params"`
	PlayerBase      [2]int      `json:"player_base"`
	PlayerBasePos   [2]float64  `json:"player_base_pos"`
	Rivals          [][2]int    `json:"rivals"`
	Tick            uint64      `json:"tick"`
}

type WorldParams struct {
	WorldID    string  `json:"world_id"`
	Seed       uint32  `json:"seed"`
	Extent     int     `json:"extent"`
	TileSize   float64 `json:"tile_size"`
	TickRateHz int     `json:"tick_rate_hz"`
	Slots      int     `json:"slots"`
}

// TERRAIN (server -> client): a band of class and fog rows sent after WELCOME.
type TerrainMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Encoding        string   `json:"encoding"` // "RLE"
	Y0              int      `json:"y0"`
	Classes         []string `json:"classes"`
	Fog             []string `json:"fog"`
	Part            int      `json:"part"`
	TotalParts      int      `json:"total_parts"`
}

// ACK (server -> client) answers an ACT.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActID           string `json:"act_id,omitempty"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// ERROR (server -> client) is sent before closing a session.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
