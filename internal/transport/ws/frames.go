package ws

import (
	"encoding/json"
	"math"
	"strconv"

	"digworld.ai/internal/protocol"
	"digworld.ai/internal/sim/encoding"
	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/kernel/model"
	"digworld.ai/internal/sim/world/units"
)

func ack(actID string) protocol.AckMsg {
	return protocol.AckMsg{Type: protocol.TypeAck, ProtocolVersion: protocol.Version, ActID: actID, Accepted: true}
}

func nack(actID, code, message string) protocol.AckMsg {
	return protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		ActID:           actID,
		Code:            code,
		Message:         message,
	}
}

// handleAct validates an ACT and queues its commands into the world inbox.
func (s *Server) handleAct(sess *session, raw []byte) protocol.AckMsg {
	var act protocol.ActMsg
	if err := json.Unmarshal(raw, &act); err != nil {
		return nack("", protocol.ErrProtoBadRequest, "malformed ACT")
	}
	if sess.role != protocol.RoleController {
		return nack(act.ActID, protocol.ErrWorldDenied, "observers cannot act")
	}
	if act.ProtocolVersion != protocol.Version {
		return nack(act.ActID, protocol.ErrProtoBadRequest, "bad protocol_version")
	}
	if err := protocol.Validate(protocol.TypeAct, raw); err != nil {
		return nack(act.ActID, protocol.ErrBadRequest, err.Error())
	}
	if !sess.limiter.Allow() {
		return nack(act.ActID, protocol.ErrRateLimit, "too many ACTs")
	}
	if now := s.world.CurrentTick(); act.Tick+s.opts.StaleTicks < now {
		return nack(act.ActID, protocol.ErrStale, "act tick too old")
	}

	cmds := make([]world.Command, 0, len(act.Commands))
	for _, c := range act.Commands {
		if c.Type == world.CmdMoveTo {
			p := model.Vec2{X: c.Target[0], Y: c.Target[1]}
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return nack(act.ActID, protocol.ErrInvalidTarget, "target not finite")
			}
			if _, ok := s.world.TileOf(p); !ok {
				return nack(act.ActID, protocol.ErrInvalidTarget, "target outside the map")
			}
		}
		cmds = append(cmds, world.Command{
			Type:   c.Type,
			Slot:   c.Slot,
			Kind:   c.Kind,
			Target: c.Target,
			UnitID: c.UnitID,
		})
	}

	inbox := s.world.Inbox()
	for i, c := range cmds {
		select {
		case inbox <- c:
		default:
			return nack(act.ActID, protocol.ErrWorldBusy, "inbox full after "+strconv.Itoa(i)+" commands")
		}
	}
	return ack(act.ActID)
}

func (s *Server) welcome(sess *session) protocol.WelcomeMsg {
	cfg := s.world.Config()
	bases := s.world.Bases()
	rivals := make([][2]int, 0, len(bases.Rivals))
	for _, r := range bases.Rivals {
		rivals = append(rivals, r.Array())
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.id,
		Role:            sess.role,
		ResumeToken:     sess.resumeToken,
		WorldParams: protocol.WorldParams{
			WorldID:    cfg.ID,
			Seed:       cfg.Seed,
			Extent:     cfg.Extent,
			TileSize:   cfg.TileSize,
			TickRateHz: cfg.TickRateHz,
			Slots:      cfg.Slots,
		},
		PlayerBase:    bases.Player.Array(),
		PlayerBasePos: s.world.PlayerBaseWorldPos().Array(),
		Rivals:        rivals,
		Tick:          s.world.CurrentTick(),
	}
}

// terrainFrames splits the class map and current fog into bands of TerrainRowsPerPart rows.
func (s *Server) terrainFrames() []protocol.TerrainMsg {
	extent := s.world.Config().Extent
	per := s.opts.TerrainRowsPerPart
	total := (extent + per - 1) / per
	out := make([]protocol.TerrainMsg, 0, total)
	for part := 0; part < total; part++ {
		y0 := part * per
		y1 := min(y0+per, extent)
		msg := protocol.TerrainMsg{
			Type:            protocol.TypeTerrain,
			ProtocolVersion: protocol.Version,
			Encoding:        "RLE",
			Y0:              y0,
			Part:            part,
			TotalParts:      total,
		}
		for y := y0; y < y1; y++ {
			msg.Classes = append(msg.Classes, encoding.EncodeRow(s.world.ClassRow(y)))
			msg.Fog = append(msg.Fog, s.world.FogRow(y))
		}
		out = append(out, msg)
	}
	return out
}

func (s *Server) obsFrom(res world.TickResult) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            res.Tick,
		Score:           res.Score,
		Digest:          res.Digest,
		Ignored:         res.Ignored,
	}
	for _, u := range s.world.Units() {
		obs.Units = append(obs.Units, unitObs(u))
	}
	if obs.Units == nil {
		obs.Units = []protocol.UnitObs{}
	}
	for _, r := range res.SpawnRequests {
		obs.SpawnRequests = append(obs.SpawnRequests, protocol.SpawnObs{UnitID: r.UnitID, Count: r.Count, Pos: r.Pos.Array()})
	}
	for _, a := range res.Arrivals {
		obs.Events = append(obs.Events, protocol.Event{"type": "ARRIVED", "unit_id": a.UnitID, "tile": a.Tile.Array()})
	}
	for _, d := range res.Digs {
		ev := protocol.Event{
			"type":    "DIG",
			"unit_id": d.UnitID,
			"tile":    d.Tile.Array(),
			"site_id": d.SiteID,
			"slot":    d.Reward.Slot,
			"score":   d.Reward.Score,
		}
		if d.Overridden {
			ev["overridden"] = true
		}
		if d.Reward.IsSummon() {
			ev["summon"] = d.Reward.Summon.String()
		} else {
			bs := make([]string, 0, len(d.Reward.Boons))
			for _, b := range d.Reward.Boons {
				bs = append(bs, b.String())
			}
			ev["boons"] = bs
		}
		obs.Events = append(obs.Events, ev)
	}
	for _, e := range res.Summons {
		obs.Events = append(obs.Events, protocol.Event{"type": "SUMMON", "elemental": e.String()})
	}
	for _, t := range res.Revealed {
		obs.Revealed = append(obs.Revealed, t.Array())
	}
	for _, x := range res.Excavated {
		obs.Excavated = append(obs.Excavated, x.Tile.Array())
	}
	return obs
}

func unitObs(u units.Unit) protocol.UnitObs {
	o := protocol.UnitObs{
		ID:         u.ID,
		Slot:       u.Slot,
		Kind:       u.Kind.String(),
		Deployment: u.Deployment.String(),
		Pos:        u.Pos.Array(),
		Tile:       u.Tile.Array(),
		Moving:     u.Moving,
		Stats:      statsMap(u.Stats),
	}
	if u.Digging != nil {
		o.Digging = u.Digging.Progress
	}
	return o
}

func statsMap(st units.Stats) map[string]int {
	return map[string]int{
		"members":           int(st.Members),
		"health_per_member": int(st.HealthPerMember),
		"total_health":      int(st.TotalHealth),
		"current_health":    int(st.CurrentHealth),
		"overworld_speed":   int(st.OverworldSpeed),
		"excavation_speed":  int(st.ExcavationSpeed),
		"battle_speed":      int(st.BattleSpeed),
		"visibility":        int(st.Visibility),
		"damage":            int(st.Damage),
	}
}
