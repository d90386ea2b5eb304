package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/paint-chess/internal/gamemgr"
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// conn is one player's websocket. It is the player's sink: Send queues into the
// outbox and a single writer goroutine drains it.
type conn struct {
	username string
	ws       *websocket.Conn
	outbox   chan paintdto.Event

	stopCh   chan struct{}
	stopOnce sync.Once
}

func (c *conn) Send(ev paintdto.Event) {
	select {
	case <-c.stopCh:
		return
	default:
	}
	select {
	case c.outbox <- ev:
	default:
		obslog.L().Warn("ws_outbox_full", zap.String("username", c.username), zap.String("kind", ev.Kind))
	}
}

func (c *conn) stop() { c.stopOnce.Do(func() { close(c.stopCh) }) }

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	username := usernameOf(r)
	if username == "" {
		http.Error(w, "missing "+UserHeader, http.StatusUnauthorized)
		return
	}
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		OriginPatterns:  s.opts.OriginPatterns,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.String("username", username), zap.Error(err))
		return
	}
	ws.SetReadLimit(s.opts.ReadLimit)

	c := &conn{
		username: username,
		ws:       ws,
		outbox:   make(chan paintdto.Event, s.opts.OutboxSize),
		stopCh:   make(chan struct{}),
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.orch.Register(username, c)
	obslog.L().Info("ws_connect", zap.String("username", username), zap.String("remote", r.RemoteAddr))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.writeLoop(ctx, c) }()
	go func() { defer wg.Done(); s.pingLoop(ctx, c) }()

	reason := s.readLoop(ctx, c)

	c.stop()
	s.orch.Detach(username, c)
	cancel()
	wg.Wait()
	_ = ws.Close(websocket.StatusNormalClosure, "bye")
	obslog.L().Info("ws_disconnect", zap.String("username", username), zap.String("reason", reason))
}

// readLoop routes inbound frames until the connection fails.
func (s *Server) readLoop(ctx context.Context, c *conn) string {
	for {
		var env paintdto.Envelope
		if err := wsjson.Read(ctx, c.ws, &env); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				return status.String()
			}
			if errors.Is(err, context.Canceled) {
				return "closed"
			}
			return err.Error()
		}
		s.dispatch(ctx, c, env)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case ev := <-c.outbox:
			wctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
			err := wsjson.Write(wctx, c.ws, ev)
			cancel()
			if err != nil {
				obslog.L().Debug("ws_write_error", zap.String("username", c.username), zap.String("kind", ev.Kind), zap.Error(err))
				_ = c.ws.Close(websocket.StatusGoingAway, "write failure")
				return
			}
		}
	}
}

// pingLoop closes the connection after two consecutive failed pings.
func (s *Server) pingLoop(ctx context.Context, c *conn) {
	t := time.NewTicker(s.opts.PingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.ws.Ping(pctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				_ = c.ws.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

// dispatch decodes one intent and hands it to the orchestrator. Malformed
// payloads are dropped.
func (s *Server) dispatch(ctx context.Context, c *conn, env paintdto.Envelope) {
	u := c.username
	switch env.Kind {
	case paintdto.KindQueueGame:
		var p paintdto.QueueGame
		if decode(u, env, &p) {
			s.orch.QueueNewMatch(ctx, u, gamemgr.Settings{SecsPerPlayer: p.SecsPerPlayer, VsAI: p.VsAI})
		}
	case paintdto.KindJoinGame:
		var p paintdto.JoinGame
		if decode(u, env, &p) {
			s.orch.JoinQueuedMatch(ctx, u, p.GameID)
		}
	case paintdto.KindLeaveQueue:
		s.orch.LeaveQueue(ctx, u)
	case paintdto.KindRequestQueue:
		s.orch.SendQueue(ctx, u)
	case paintdto.KindRequestOwnQueue:
		s.orch.SendQueueStatus(u)
	case paintdto.KindReadyToStart:
		s.orch.StartGame(u)
	case paintdto.KindPerformMove:
		var p paintdto.PerformMove
		if decode(u, env, &p) {
			s.orch.PerformMove(u, match.RawMove{From: p.From, To: p.To, Promotion: p.Promotion})
		}
	case paintdto.KindChatPublish:
		var p paintdto.ChatPublish
		if decode(u, env, &p) {
			s.orch.PublishMessage(u, p.Content)
		}
	case paintdto.KindRequestChatHistory:
		s.orch.ChatHistory(u)
	case paintdto.KindResign:
		s.orch.Resign(u)
	default:
		obslog.L().Debug("ws_unknown_kind", zap.String("username", u), zap.String("kind", env.Kind))
	}
}

func decode(username string, env paintdto.Envelope, v any) bool {
	if len(env.Payload) == 0 {
		obslog.L().Debug("ws_missing_payload", zap.String("username", username), zap.String("kind", env.Kind))
		return false
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		obslog.L().Debug("ws_bad_payload", zap.String("username", username), zap.String("kind", env.Kind), zap.Error(err))
		return false
	}
	return true
}
