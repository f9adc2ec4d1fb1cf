package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy   = "E_WORLD_BUSY"
	ErrWorldDenied = "E_WORLD_DENIED"

	// Command layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrStale         = "E_STALE"
	ErrInternal      = "E_INTERNAL"
)
