package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "digworld.ai/internal/persistence/log"
	"digworld.ai/internal/sim/tuning"
	"digworld.ai/internal/sim/world"
)

func main() {
	var (
		dataDir    = flag.String("data", "./data", "runtime data directory")
		worldID    = flag.String("world", "", "world id (default: tuning world.id)")
		seed       = flag.Int64("seed", -1, "world seed (default: tuning world.seed)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml the server ran with")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}
	cfg := tune.WorldConfig()
	if id := strings.TrimSpace(*worldID); id != "" {
		cfg.ID = id
	}
	if *seed >= 0 {
		cfg.Seed = uint32(*seed)
	}

	w, err := world.New(cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}

	worldDir := filepath.Join(*dataDir, "worlds", cfg.ID)
	checked, err := replay(w, worldDir, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: world=%s seed=%d checked=%d ticks score=%d\n", cfg.ID, cfg.Seed, checked, w.Score())
}

var errStop = errors.New("stop")

// replay re-simulates the tick log of worldDir on a freshly generated w and compares digests.
func replay(w *world.World, worldDir string, toTick uint64) (uint64, error) {
	var checked uint64
	err := persistlog.ReadTicks(worldDir, func(entry world.TickLogEntry) error {
		if toTick != 0 && entry.Tick > toTick {
			return errStop
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}
		res := w.Step(entry.DT, entry.Commands)
		checked++
		if res.Digest != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", res.Tick, res.Digest, entry.Digest)
		}
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	if err == nil && checked == 0 {
		err = fmt.Errorf("no tick entries under %s", worldDir)
	}
	return checked, err
}
