package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Units       int `json:"units"`
	Visuals     int `json:"visuals"`
	Subscribers int `json:"subscribers"`

	Score          int `json:"score"`
	SitesRemaining int `json:"sites_remaining"`
	SitesFound     int `json:"sites_found"`
	FogVisible     int `json:"fog_visible"`
	RevealedLast   int `json:"revealed_last_tick"`

	IgnoredCommands     uint64 `json:"ignored_commands"`
	IgnoredCommandsLast int    `json:"ignored_commands_last_tick"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
}

func (w *World) storeMetrics(stepMS float64, ignored, revealed int) {
	w.metrics.Store(WorldMetrics{
		Tick:                w.tick.Load(),
		Units:               len(w.units),
		Visuals:             len(w.visuals),
		Subscribers:         w.subscriberCount(),
		Score:               w.score,
		SitesRemaining:      w.registry.Remaining(),
		SitesFound:          w.registry.FoundCount(),
		FogVisible:          w.fog.VisibleCount(),
		RevealedLast:        revealed,
		IgnoredCommands:     w.ignoredTotal.Load(),
		IgnoredCommandsLast: ignored,
		QueueDepths:         QueueDepths{Inbox: len(w.inbox)},
		StepMS:              stepMS,
	})
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
