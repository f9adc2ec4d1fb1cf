package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"digworld.ai/internal/protocol"
	"digworld.ai/internal/sim/world"
	"digworld.ai/internal/sim/world/logic/mathx"
)

type Options struct {
	ActPerSecond       float64
	ActBurst           int
	TerrainRowsPerPart int
	// StaleTicks rejects ACTs built against a tick older than CurrentTick-StaleTicks.
	StaleTicks uint64
}

func DefaultOptions() Options {
	return Options{
		ActPerSecond:       20,
		ActBurst:           40,
		TerrainRowsPerPart: 64,
		StaleTicks:         200,
	}
}

type Server struct {
	world *world.World
	log   *log.Logger
	opts  Options

	upgrader websocket.Upgrader

	mu            sync.Mutex
	controller    string
	resumeToken   string
	resumeSession string

	controllers atomic.Int64
	observers   atomic.Int64
}

type session struct {
	id          string
	role        string
	resumeToken string
	out         chan []byte
	limiter     *rate.Limiter
}

type Stats struct {
	Controllers int64 `json:"controllers"`
	Observers   int64 `json:"observers"`
}

func NewServer(w *world.World, logger *log.Logger, opts Options) *Server {
	def := DefaultOptions()
	if opts.ActPerSecond <= 0 {
		opts.ActPerSecond = def.ActPerSecond
	}
	if opts.ActBurst <= 0 {
		opts.ActBurst = def.ActBurst
	}
	if opts.TerrainRowsPerPart <= 0 {
		opts.TerrainRowsPerPart = def.TerrainRowsPerPart
	}
	if opts.StaleTicks == 0 {
		opts.StaleTicks = def.StaleTicks
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		world: w,
		log:   logger,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Stats() Stats {
	return Stats{Controllers: s.controllers.Load(), Observers: s.observers.Load()}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.release(sess)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ticks, unsubscribe := s.world.Subscribe(4)
		defer unsubscribe()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Tick forwarder. OBS frames are dropped when the session queue is full.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case res := <-ticks:
					b := encodeFrame(s.obsFrom(res))
					select {
					case sess.out <- b:
					default:
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.reply(ctx, sess, nack("", protocol.ErrProtoBadRequest, "malformed json"))
				continue
			}
			if base.Type != protocol.TypeAct {
				continue
			}
			s.reply(ctx, sess, s.handleAct(sess, msg))
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}
	if base.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		_ = writeJSON(conn, errorMsg(protocol.ErrProtoBadRequest, err.Error()))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	maxQ = mathx.ClampInt(maxQ, 1, 64)
	sess := &session{
		id:      uuid.NewString(),
		role:    hello.Role,
		out:     make(chan []byte, maxQ),
		limiter: rate.NewLimiter(rate.Limit(s.opts.ActPerSecond), s.opts.ActBurst),
	}

	if sess.role == protocol.RoleController {
		token := ""
		if hello.Auth != nil {
			token = strings.TrimSpace(hello.Auth.ResumeToken)
		}
		if !s.claimController(sess, token) {
			_ = writeJSON(conn, errorMsg(protocol.ErrWorldBusy, "controller seat taken"))
			return nil
		}
		s.controllers.Add(1)
	} else {
		s.observers.Add(1)
	}
	s.log.Printf("session %s joined as %s (%s)", sess.id, sess.role, hello.ClientName)

	// Send welcome + terrain immediately.
	if err := writeJSON(conn, s.welcome(sess)); err != nil {
		s.release(sess)
		return nil
	}
	for _, f := range s.terrainFrames() {
		if err := writeJSON(conn, f); err != nil {
			s.release(sess)
			return nil
		}
	}
	return sess
}

// claimController gives sess the controller seat. A matching resume token keeps the previous
// session id; otherwise a fresh token is issued.
func (s *Server) claimController(sess *session, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controller != "" {
		return false
	}
	if token != "" && token == s.resumeToken {
		sess.id = s.resumeSession
	} else {
		s.resumeToken = uuid.NewString()
		s.resumeSession = sess.id
	}
	s.controller = sess.id
	sess.resumeToken = s.resumeToken
	return true
}

func (s *Server) release(sess *session) {
	if sess.role != protocol.RoleController {
		s.observers.Add(-1)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controller == sess.id {
		s.controller = ""
		s.controllers.Add(-1)
	}
}

func (s *Server) reply(ctx context.Context, sess *session, ack protocol.AckMsg) {
	b := encodeFrame(ack)
	select {
	case sess.out <- b:
	case <-ctx.Done():
	}
}

func errorMsg(code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	}
}

// encodeFrame marshals v, substituting an E_INTERNAL error frame when v cannot be encoded.
func encodeFrame(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(errorMsg(protocol.ErrInternal, "encode frame: "+err.Error()))
	}
	return b
}

func writeJSON(conn *websocket.Conn, v any) error {
	b := encodeFrame(v)
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
