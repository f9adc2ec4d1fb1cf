package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	persistlog "digworld.ai/internal/persistence/log"
	"digworld.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "metrics":
			metricsCmd(os.Args[2:])
			return
		case "audit":
			auditCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "worlds"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fmt.Println(describeWorldDir(filepath.Join(*dataDir, "worlds", e.Name())))
	}
}

// describeWorldDir summarizes which artifacts a world directory holds.
func describeWorldDir(dir string) string {
	count := func(sub, prefix string) int {
		m, _ := filepath.Glob(filepath.Join(dir, sub, prefix+"-*.jsonl.zst"))
		return len(m)
	}
	index := "no"
	if _, err := os.Stat(filepath.Join(dir, "index", "world.sqlite")); err == nil {
		index = "yes"
	}
	return fmt.Sprintf("%s events_files=%d audit_files=%d index=%s",
		filepath.Base(dir), count("events", "events"), count("audit", "audit"), index)
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	unitID := fs.Uint64("unit", 0, "unit id filter (optional)")
	asJSON := fs.Bool("json", false, "print raw entries")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := printAudit(os.Stdout, worldDir, *unitID, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}
}

func printAudit(out io.Writer, worldDir string, unitID uint64, asJSON bool) error {
	var (
		n     int
		total int
	)
	enc := json.NewEncoder(out)
	err := persistlog.ReadAudit(worldDir, func(e world.AuditEntry) error {
		if unitID != 0 && e.UnitID != unitID {
			return nil
		}
		n++
		total = e.Total
		if asJSON {
			return enc.Encode(e)
		}
		what := strings.Join(e.Boons, ", ")
		if e.Summon != "" {
			what = "summon " + e.Summon
		}
		override := ""
		if e.Overridden {
			override = " (early-game override)"
		}
		_, err := fmt.Fprintf(out, "tick=%d unit=%d tile=%v site=%d slot=%d%s score=+%d %s\n",
			e.Tick, e.UnitID, e.Tile, e.SiteID, e.Slot, override, e.Score, what)
		return err
	})
	if err != nil {
		return err
	}
	if !asJSON {
		_, err = fmt.Fprintf(out, "excavations=%d total_score=%d\n", n, total)
	}
	return err
}
