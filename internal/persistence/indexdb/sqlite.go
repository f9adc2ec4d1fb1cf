package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"digworld.ai/internal/sim/world"
)

// SQLiteIndex is a queryable read model of the tick and audit logs. Writes are queued to a
// single writer goroutine and dropped when it falls behind; the JSONL logs stay authoritative.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick  atomic.Uint64
	dropAudit atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
)

type req struct {
	kind reqKind

	tick  world.TickLogEntry
	audit world.AuditEntry
}

// WorldInfo describes a generated world; written once at startup.
type WorldInfo struct {
	WorldID string
	Seed    uint32
	Extent  int
	Mean    float64
	Min     float64
	Max     float64
	Player  [2]int
	Rivals  [][2]int
	Sites   int
}

type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropTickTotal  uint64 `json:"drop_tick_total"`
	DropAuditTotal uint64 `json:"drop_audit_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bases (
			kind TEXT NOT NULL,
			idx INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (kind, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			dt REAL NOT NULL,
			commands INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_type_tick ON commands(type, tick);`,
		`CREATE TABLE IF NOT EXISTS excavations (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			unit_id INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			site_id INTEGER NOT NULL,
			slot INTEGER NOT NULL,
			overridden INTEGER NOT NULL,
			score INTEGER NOT NULL,
			summon TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_excavations_unit_tick ON excavations(unit_id, tick);`,
		`CREATE TABLE IF NOT EXISTS score_timeline (
			tick INTEGER PRIMARY KEY,
			score INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
		s.dropAudit.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropTickTotal:  s.dropTick.Load(),
		DropAuditTotal: s.dropAudit.Load(),
	}
}

// RecordWorld stores the generation summary synchronously. Call it before the first
// WriteTick; the writer keeps its transaction open between batches.
func (s *SQLiteIndex) RecordWorld(info WorldInfo) error {
	if s == nil {
		return nil
	}
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"schema_version": "1",
		"world_id":       info.WorldID,
		"seed":           fmt.Sprint(info.Seed),
		"extent":         fmt.Sprint(info.Extent),
		"height_mean":    fmt.Sprintf("%.6f", info.Mean),
		"height_min":     fmt.Sprintf("%.6f", info.Min),
		"height_max":     fmt.Sprintf("%.6f", info.Max),
		"sites":          fmt.Sprint(info.Sites),
		"recorded_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM bases`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO bases(kind,idx,x,y) VALUES('player',0,?,?)`, info.Player[0], info.Player[1]); err != nil {
		return err
	}
	for i, r := range info.Rivals {
		if _, err := tx.Exec(`INSERT INTO bases(kind,idx,x,y) VALUES('rival',?,?,?)`, i, r[0], r[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,dt,commands,raw_json) VALUES(?,?,?,?,?)`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(tick,seq,type,raw_json) VALUES(?,?,?,?)`)
	insertExcavation, _ := s.db.Prepare(`INSERT OR REPLACE INTO excavations(tick,seq,unit_id,x,y,site_id,slot,overridden,score,summon,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertScore, _ := s.db.Prepare(`INSERT OR REPLACE INTO score_timeline(tick,score) VALUES(?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertCommand, insertExcavation, insertScore} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			b, _ := json.Marshal(r.tick)
			if insertTick != nil {
				if _, err := tx.Stmt(insertTick).Exec(int64(r.tick.Tick), r.tick.Digest, r.tick.DT, len(r.tick.Commands), string(b)); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for i, c := range r.tick.Commands {
				if insertCommand == nil {
					break
				}
				cj, _ := json.Marshal(c)
				if _, err := tx.Stmt(insertCommand).Exec(int64(r.tick.Tick), i, c.Type, string(cj)); err != nil {
					rollback()
					break
				}
				opCount++
			}

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			if insertExcavation != nil {
				if _, err := tx.Stmt(insertExcavation).Exec(
					int64(a.Tick),
					seq,
					int64(a.UnitID),
					a.Tile[0], a.Tile[1],
					a.SiteID,
					a.Slot,
					boolInt(a.Overridden),
					a.Score,
					nullString(a.Summon),
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			if insertScore != nil {
				if _, err := tx.Stmt(insertScore).Exec(int64(a.Tick), a.Total); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
