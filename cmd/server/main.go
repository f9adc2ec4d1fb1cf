package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "digworld.ai/internal/persistence/log"
	"digworld.ai/internal/persistence/indexdb"
	"digworld.ai/internal/sim/tuning"
	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "", "world id (default: tuning world.id)")
		seed       = flag.Int64("seed", -1, "world seed (default: tuning world.seed)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
		autoSpawn  = flag.Bool("auto_spawn", true, "complete spawn requests on behalf of a headless host")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	cfg := tune.WorldConfig()
	if id := strings.TrimSpace(*worldID); id != "" {
		cfg.ID = id
	}
	if *seed >= 0 {
		cfg.Seed = uint32(*seed)
	}

	worldDir := filepath.Join(*dataDir, "worlds", cfg.ID)
	_ = os.MkdirAll(worldDir, 0o755)

	start := time.Now()
	w, err := world.New(cfg, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	logger.Printf("world %s ready in %s", cfg.ID, time.Since(start).Round(time.Millisecond))

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.RecordWorld(worldInfo(w)); err != nil {
			logger.Printf("index backend: record world: %v", err)
		}
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	if idx != nil {
		w.SetTickLogger(persistlog.TickFanout{tickLog, idx})
		w.SetAuditLogger(persistlog.AuditFanout{auditLog, idx})
	} else {
		w.SetTickLogger(tickLog)
		w.SetAuditLogger(auditLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if *autoSpawn {
		go runAutoSpawner(ctx, w)
	}
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger, ws.Options{
		ActPerSecond: tune.RateLimits.ActPerSecond,
		ActBurst:     tune.RateLimits.ActBurst,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, wsSrv, idx))

	enableAdminHTTP := envBool("DW_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("DW_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(adminState(w))
		})
	} else {
		logger.Printf("admin endpoints disabled (DW_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func worldInfo(w *world.World) indexdb.WorldInfo {
	cfg := w.Config()
	rep := w.GenerationReport()
	bases := w.Bases()
	info := indexdb.WorldInfo{
		WorldID: cfg.ID,
		Seed:    cfg.Seed,
		Extent:  cfg.Extent,
		Mean:    rep.Final.Mean,
		Min:     rep.Final.Min,
		Max:     rep.Final.Max,
		Player:  bases.Player.Array(),
		Sites:   len(w.RemainingSites()),
	}
	for _, r := range bases.Rivals {
		info.Rivals = append(info.Rivals, r.Array())
	}
	return info
}

type adminStateResp struct {
	WorldID  string             `json:"world_id"`
	Tick     uint64             `json:"tick"`
	Score    int                `json:"score"`
	Selected int                `json:"selected_slot"`
	Slots    []world.Slot       `json:"slots"`
	Summoned []string           `json:"summoned,omitempty"`
	Metrics  world.WorldMetrics `json:"metrics"`
}

func adminState(w *world.World) adminStateResp {
	resp := adminStateResp{
		WorldID:  w.ID(),
		Tick:     w.CurrentTick(),
		Score:    w.Score(),
		Selected: w.SelectedSlot(),
		Slots:    w.Slots(),
		Metrics:  w.Metrics(),
	}
	for _, e := range w.Summoned() {
		resp.Summoned = append(resp.Summoned, e.String())
	}
	return resp
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
