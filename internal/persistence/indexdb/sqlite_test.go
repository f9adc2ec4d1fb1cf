package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"digworld.ai/internal/sim/world"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})

	st := s.Stats()
	if st.DropTickTotal != 1 {
		t.Fatalf("DropTickTotal=%d want=1", st.DropTickTotal)
	}
	if st.DropAuditTotal != 1 {
		t.Fatalf("DropAuditTotal=%d want=1", st.DropAuditTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WriteAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "world.sqlite")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.RecordWorld(WorldInfo{WorldID: "w1", Seed: 442, Extent: 1000, Player: [2]int{500, 400}, Rivals: [][2]int{{1, 2}, {3, 4}}, Sites: 321}); err != nil {
		t.Fatalf("record world: %v", err)
	}
	_ = s.WriteTick(world.TickLogEntry{Tick: 0, DT: 0.05, Digest: "d0", Commands: []world.Command{world.SelectSlot(1), world.UnlockSlot(2)}})
	_ = s.WriteTick(world.TickLogEntry{Tick: 1, DT: 0.05, Digest: "d1"})
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, UnitID: 1, Action: "EXCAVATE", Tile: [2]int{500, 400}, SiteID: 9, Slot: 0, Overridden: true, Score: 120, Total: 120})
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, UnitID: 2, Action: "EXCAVATE", Tile: [2]int{10, 11}, SiteID: 10, Slot: 3, Score: 300, Total: 420, Summon: "fire"})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := OpenQuery(path)
	if err != nil {
		t.Fatalf("open query: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	meta, err := Meta(ctx, db)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta["seed"] != "442" || meta["sites"] != "321" {
		t.Fatalf("meta=%v", meta)
	}

	d, err := TickDigest(ctx, db, 1)
	if err != nil || d != "d1" {
		t.Fatalf("digest=%q err=%v", d, err)
	}
	if _, err := TickDigest(ctx, db, 99); err == nil {
		t.Fatalf("expected missing tick error")
	}

	ex, err := Excavations(ctx, db, 10)
	if err != nil {
		t.Fatalf("excavations: %v", err)
	}
	if len(ex) != 2 || !ex[0].Overridden || ex[1].Summon != "fire" {
		t.Fatalf("excavations=%+v", ex)
	}

	tl, err := ScoreTimeline(ctx, db)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	// Both excavations share tick 1; the later total wins.
	if len(tl) != 1 || tl[0].Score != 420 {
		t.Fatalf("timeline=%+v", tl)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM commands WHERE tick = 0`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("commands=%d err=%v", n, err)
	}
}
