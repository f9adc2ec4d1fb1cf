package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	persistlog "digworld.ai/internal/persistence/log"
	"digworld.ai/internal/sim/world"
)

func TestPrintAudit(t *testing.T) {
	dir := t.TempDir()
	al := persistlog.NewAuditLogger(dir)
	_ = al.WriteAudit(world.AuditEntry{Tick: 5, UnitID: 1, Action: "EXCAVATE", Tile: [2]int{3, 4}, SiteID: 7, Score: 120, Total: 120, Boons: []string{"health +3"}, Overridden: true})
	_ = al.WriteAudit(world.AuditEntry{Tick: 9, UnitID: 2, Action: "EXCAVATE", Tile: [2]int{8, 8}, SiteID: 8, Slot: 2, Score: 300, Total: 420, Summon: "fire"})
	if err := al.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var buf bytes.Buffer
	if err := printAudit(&buf, dir, 0, false); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"early-game override", "summon fire", "excavations=2 total_score=420"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := printAudit(&buf, dir, 2, false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "excavations=1 total_score=420") {
		t.Fatalf("filtered output:\n%s", buf.String())
	}
}

func TestDescribeWorldDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "w1")
	tl := persistlog.NewTickLogger(dir)
	_ = tl.WriteTick(world.TickLogEntry{Tick: 0})
	_ = tl.Close()
	if err := os.MkdirAll(filepath.Join(dir, "index"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := describeWorldDir(dir)
	if got != "w1 events_files=1 audit_files=0 index=no" {
		t.Fatalf("got %q", got)
	}
}
