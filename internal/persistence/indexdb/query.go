package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

type ExcavationRow struct {
	Tick       uint64 `json:"tick"`
	UnitID     uint64 `json:"unit_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	SiteID     int    `json:"site_id"`
	Slot       int    `json:"slot"`
	Overridden bool   `json:"overridden"`
	Score      int    `json:"score"`
	Summon     string `json:"summon,omitempty"`
}

type ScorePoint struct {
	Tick  uint64 `json:"tick"`
	Score int    `json:"score"`
}

// OpenQuery opens an existing index for queries without starting the writer.
func OpenQuery(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Meta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func Excavations(ctx context.Context, db *sql.DB, limit int) ([]ExcavationRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `SELECT tick, unit_id, x, y, site_id, slot, overridden, score, COALESCE(summon,'')
		FROM excavations ORDER BY tick, seq LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExcavationRow
	for rows.Next() {
		var r ExcavationRow
		var overridden int
		if err := rows.Scan(&r.Tick, &r.UnitID, &r.X, &r.Y, &r.SiteID, &r.Slot, &overridden, &r.Score, &r.Summon); err != nil {
			return nil, err
		}
		r.Overridden = overridden != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func ScoreTimeline(ctx context.Context, db *sql.DB) ([]ScorePoint, error) {
	rows, err := db.QueryContext(ctx, `SELECT tick, score FROM score_timeline ORDER BY tick`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScorePoint
	for rows.Next() {
		var p ScorePoint
		if err := rows.Scan(&p.Tick, &p.Score); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TickDigest returns the recorded digest of tick.
func TickDigest(ctx context.Context, db *sql.DB, tick uint64) (string, error) {
	var d string
	err := db.QueryRowContext(ctx, `SELECT digest FROM ticks WHERE tick = ?`, int64(tick)).Scan(&d)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("tick %d not indexed", tick)
	}
	return d, err
}
