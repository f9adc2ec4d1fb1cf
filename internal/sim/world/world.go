package world

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"digworld.ai/internal/sim/world/boons"
	"digworld.ai/internal/sim/world/fog"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/placement"
	"digworld.ai/internal/sim/world/terrain/gen"
	"digworld.ai/internal/sim/world/treasure"
	"digworld.ai/internal/sim/world/units"
)

var ErrGeneration = errors.New("world generation failed")

type SlotState uint8

const (
	SlotUnavailable SlotState = iota
	SlotAvailable
	SlotSummoned
)

func (s SlotState) String() string {
	switch s {
	case SlotAvailable:
		return "available"
	case SlotSummoned:
		return "summoned"
	default:
		return "unavailable"
	}
}

// Slot is an army slot. Slot 0 is the defense army; the rest are deployable.
type Slot struct {
	State  SlotState `json:"state"`
	UnitID uint64    `json:"unit_id,omitempty"`
}

// Visual is one member sprite of a unit. Its world position is the unit position plus Offset.
type Visual struct {
	ID     uint64     `json:"id"`
	UnitID uint64     `json:"unit_id"`
	Offset model.Vec2 `json:"offset"`
}

// World is a single-threaded authoritative simulation.
// State is mutated only inside step; other goroutines read through the query methods.
type World struct {
	cfg WorldConfig
	log *log.Logger

	mu   sync.RWMutex
	tick atomic.Uint64

	heights *gen.HeightField
	classes *gen.ClassMap
	report  gen.Report
	bases   placement.Bases

	registry *treasure.Registry
	fog      *fog.Tracker
	boons    *boons.Accumulator

	slots    []Slot
	selected int
	units    map[uint64]*units.Unit
	visuals  []*Visual
	score    int
	summoned []treasure.Elemental

	nextUnitID   uint64
	nextVisualID uint64

	inbox chan Command
	stop  chan struct{}

	subsMu  sync.Mutex
	subs    map[int]chan TickResult
	nextSub int

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	ignoredTotal atomic.Uint64
	metrics      atomic.Value
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick     uint64    `json:"tick"`
	DT       float64   `json:"dt"`
	Commands []Command `json:"commands,omitempty"`
	Digest   string    `json:"digest"`
}

// AuditEntry records one resolved excavation.
type AuditEntry struct {
	Tick       uint64          `json:"tick"`
	UnitID     uint64          `json:"unit_id"`
	Action     string          `json:"action"` // e.g. "EXCAVATE"
	Tile       [2]int          `json:"tile"`
	SiteID     int             `json:"site_id"`
	Slot       int             `json:"slot"`
	Overridden bool            `json:"overridden,omitempty"`
	Score      int             `json:"score"`
	Total      int             `json:"total_score"`
	Boons      []string        `json:"boons,omitempty"`
	Summon     string          `json:"summon,omitempty"`
	Reward     treasure.Reward `json:"reward"`
}

// New generates terrain, bases and treasure for cfg.Seed and returns a world ready to step.
func New(cfg WorldConfig, logger *log.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cfg.Terrain.Size = cfg.Extent

	hf, classes, rep, err := gen.Generate(cfg.Seed, cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	bases, err := placement.Place(hf, cfg.Seed, cfg.Placement)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	sites := treasure.Generate(cfg.Seed, cfg.Extent, cfg.Sites)

	w := &World{
		cfg:      cfg,
		log:      logger,
		heights:  hf,
		classes:  classes,
		report:   rep,
		bases:    bases,
		registry: treasure.NewRegistry(sites),
		fog:      fog.New(cfg.Extent),
		boons:    boons.NewAccumulator(cfg.Slots),
		slots:    make([]Slot, cfg.Slots),
		selected: 1,
		units:    map[uint64]*units.Unit{},
		inbox:    make(chan Command, 1024),
		stop:     make(chan struct{}),
		subs:     map[int]chan TickResult{},
	}
	w.slots[1].State = SlotAvailable

	w.fog.Reveal(bases.Player, cfg.BaseRevealRadius)
	if cfg.RivalRevealRadius >= 0 {
		for _, r := range bases.Rivals {
			w.fog.Reveal(r, cfg.RivalRevealRadius)
		}
	}

	w.log.Printf("generated world %s seed=%d extent=%d mean=%.4f min=%.4f max=%.4f recentered=%v squashed=%d+%d",
		cfg.ID, cfg.Seed, cfg.Extent, rep.Final.Mean, rep.Final.Min, rep.Final.Max, rep.Recentered, rep.Squashed, rep.ErosionSquashed)
	w.log.Printf("placed player base at %v with %d rivals; %d treasure sites", bases.Player.Array(), len(bases.Rivals), len(sites))
	w.storeMetrics(0, 0, 0)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)   { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

func (w *World) Inbox() chan<- Command { return w.inbox }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Subscribe registers a TickResult stream. Slow subscribers only see the latest results.
func (w *World) Subscribe(buf int) (<-chan TickResult, func()) {
	if buf <= 0 {
		buf = 1
	}
	ch := make(chan TickResult, buf)
	w.subsMu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	w.subsMu.Unlock()
	return ch, func() {
		w.subsMu.Lock()
		delete(w.subs, id)
		w.subsMu.Unlock()
	}
}

func (w *World) publish(res TickResult) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		sendLatest(ch, res)
	}
}

func (w *World) subscriberCount() int {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	return len(w.subs)
}

func sendLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
