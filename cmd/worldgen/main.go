package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"digworld.ai/internal/sim/tuning"
	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/terrain/gen"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.Int64("seed", -1, "world seed (default: tuning world.seed)")
		extent     = flag.Int("extent", 0, "map extent in tiles (default: tuning world.extent)")
		asJSON     = flag.Bool("json", false, "print the report as JSON")
		mapCols    = flag.Int("map", 0, "render an ASCII class map this many columns wide (0 = off)")
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
	if *seed >= 0 {
		cfg.Seed = uint32(*seed)
	}
	if *extent > 0 {
		cfg.Extent = *extent
	}

	logger := log.New(os.Stderr, "[worldgen] ", log.LstdFlags|log.Lmicroseconds)
	start := time.Now()
	w, err := world.New(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
	rep := buildReport(w, time.Since(start))

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
	} else {
		printReport(os.Stdout, rep)
	}
	if *mapCols > 0 {
		renderMap(os.Stdout, w, *mapCols)
	}
}

type report struct {
	Seed       uint32         `json:"seed"`
	Extent     int            `json:"extent"`
	ElapsedMS  int64          `json:"elapsed_ms"`
	Mean       float64        `json:"mean"`
	Min        float64        `json:"min"`
	Max        float64        `json:"max"`
	PreMean    float64        `json:"pre_mean"`
	Recentered bool           `json:"recentered"`
	Squashed   int            `json:"squashed"`
	PostErode  int            `json:"squashed_after_erosion"`
	Classes    map[string]int `json:"classes"`
	Player     [2]int         `json:"player"`
	Rivals     [][2]int       `json:"rivals"`
	Sites      int            `json:"sites"`
	Visible    int            `json:"visible_tiles"`
}

func buildReport(w *world.World, elapsed time.Duration) report {
	cfg := w.Config()
	gr := w.GenerationReport()
	bases := w.Bases()
	r := report{
		Seed:       cfg.Seed,
		Extent:     cfg.Extent,
		ElapsedMS:  elapsed.Milliseconds(),
		Mean:       gr.Final.Mean,
		Min:        gr.Final.Min,
		Max:        gr.Final.Max,
		PreMean:    gr.PreMean,
		Recentered: gr.Recentered,
		Squashed:   gr.Squashed,
		PostErode:  gr.ErosionSquashed,
		Classes:    map[string]int{},
		Player:     bases.Player.Array(),
		Sites:      len(w.RemainingSites()),
		Visible:    w.Metrics().FogVisible,
	}
	for c, n := range gr.Classes {
		r.Classes[c.String()] = n
	}
	for _, t := range bases.Rivals {
		r.Rivals = append(r.Rivals, t.Array())
	}
	return r
}

func printReport(out io.Writer, r report) {
	fmt.Fprintf(out, "seed=%d extent=%d generated in %dms\n", r.Seed, r.Extent, r.ElapsedMS)
	fmt.Fprintf(out, "heights: mean=%.4f min=%.4f max=%.4f (sampled mean %.4f, recentered=%v, squashed=%d+%d)\n",
		r.Mean, r.Min, r.Max, r.PreMean, r.Recentered, r.Squashed, r.PostErode)
	total := r.Extent * r.Extent
	for c := gen.ClassDeepWater; c <= gen.ClassMountain; c++ {
		n := r.Classes[c.String()]
		fmt.Fprintf(out, "  %-13s %8d %6.2f%%\n", c.String(), n, 100*float64(n)/float64(max(total, 1)))
	}
	fmt.Fprintf(out, "player base: %v\n", r.Player)
	fmt.Fprintf(out, "rival bases: %d\n", len(r.Rivals))
	fmt.Fprintf(out, "treasure sites: %d\n", r.Sites)
	fmt.Fprintf(out, "visible tiles at start: %d\n", r.Visible)
}

var classGlyphs = [...]byte{'~', '-', '.', ':', '"', '^'}

// renderMap samples the class map down to cols columns; P marks the player base, R rivals.
func renderMap(out io.Writer, w *world.World, cols int) {
	extent := w.Config().Extent
	if cols > extent {
		cols = extent
	}
	step := extent / cols
	bases := w.Bases()
	cell := func(t model.Tile) (model.Tile, bool) {
		return model.Tile{X: t.X / step, Y: t.Y / step}, t.X/step < cols && t.Y/step < cols
	}
	marks := map[model.Tile]byte{}
	for _, r := range bases.Rivals {
		if c, ok := cell(r); ok {
			marks[c] = 'R'
		}
	}
	if c, ok := cell(bases.Player); ok {
		marks[c] = 'P'
	}

	var b strings.Builder
	for cy := cols - 1; cy >= 0; cy-- {
		for cx := 0; cx < cols; cx++ {
			if m, ok := marks[model.Tile{X: cx, Y: cy}]; ok {
				b.WriteByte(m)
				continue
			}
			cls, ok := w.ClassAt(model.Tile{X: cx * step, Y: cy * step})
			if !ok || int(cls) >= len(classGlyphs) {
				b.WriteByte('?')
				continue
			}
			b.WriteByte(classGlyphs[cls])
		}
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(out, b.String())
}
