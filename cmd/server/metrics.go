package main

import (
	"fmt"
	"net/http"

	"digworld.ai/internal/persistence/indexdb"
	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/transport/ws"
)

func metricsHandler(w *world.World, wsSrv *ws.Server, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		id := w.ID()
		m := w.Metrics()
		tick := w.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		gauge := func(name, help string, v any) {
			fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
			fmt.Fprintf(rw, "%s{world=%q} %v\n", name, id, v)
		}
		gauge("digworld_world_tick", "Current world tick.", tick)
		gauge("digworld_world_units", "Deployed units.", m.Units)
		gauge("digworld_world_visuals", "Member visuals spawned.", m.Visuals)
		gauge("digworld_world_score", "Accumulated treasure score.", m.Score)
		gauge("digworld_world_sites_remaining", "Treasure sites still buried.", m.SitesRemaining)
		gauge("digworld_world_sites_found", "Treasure sites excavated.", m.SitesFound)
		gauge("digworld_world_fog_visible", "Visible tiles.", m.FogVisible)
		gauge("digworld_world_ignored_commands_total", "Commands dropped as malformed or invalid.", m.IgnoredCommands)
		gauge("digworld_world_subscribers", "Tick result subscribers.", m.Subscribers)
		gauge("digworld_world_step_ms", "Last tick step duration in milliseconds.", fmt.Sprintf("%.3f", m.StepMS))

		fmt.Fprintf(rw, "# HELP digworld_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE digworld_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "digworld_world_queue_depth{world=%q,queue=%q} %d\n", id, "inbox", m.QueueDepths.Inbox)

		st := wsSrv.Stats()
		fmt.Fprintf(rw, "# HELP digworld_ws_sessions Connected sessions by role.\n")
		fmt.Fprintf(rw, "# TYPE digworld_ws_sessions gauge\n")
		fmt.Fprintf(rw, "digworld_ws_sessions{world=%q,role=%q} %d\n", id, "controller", st.Controllers)
		fmt.Fprintf(rw, "digworld_ws_sessions{world=%q,role=%q} %d\n", id, "observer", st.Observers)

		if idx != nil {
			is := idx.Stats()
			fmt.Fprintf(rw, "# HELP digworld_index_dropped_total Index writes dropped because the queue was full.\n")
			fmt.Fprintf(rw, "# TYPE digworld_index_dropped_total counter\n")
			fmt.Fprintf(rw, "digworld_index_dropped_total{world=%q,kind=%q} %d\n", id, "tick", is.DropTickTotal)
			fmt.Fprintf(rw, "digworld_index_dropped_total{world=%q,kind=%q} %d\n", id, "audit", is.DropAuditTotal)
			fmt.Fprintf(rw, "# HELP digworld_index_queue_depth Index writer backlog.\n")
			fmt.Fprintf(rw, "# TYPE digworld_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "digworld_index_queue_depth{world=%q} %d\n", id, is.QueueDepth)
		}
	}
}
