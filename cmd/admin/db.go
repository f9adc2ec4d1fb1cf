package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"digworld.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	tick := fs.Uint64("tick", 0, "tick (digest query)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "meta"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := indexdb.OpenQuery(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	var out any
	switch q {
	case "meta":
		out, err = indexdb.Meta(ctx, db)
	case "excavations":
		out, err = indexdb.Excavations(ctx, db, *limit)
	case "score":
		out, err = indexdb.ScoreTimeline(ctx, db)
	case "digest":
		var d string
		d, err = indexdb.TickDigest(ctx, db, *tick)
		out = map[string]any{"tick": *tick, "digest": d}
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(meta|excavations|score|digest)")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
