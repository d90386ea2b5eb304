// Package transport exposes the orchestrator over HTTP: a websocket for player
// intents and events, plus board snapshots and a health check.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/internal/gamemgr"
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/internal/render"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// MaxGuestNameRunes bounds guest display names.
const MaxGuestNameRunes = 20

// UserHeader carries the authenticated username set by the upstream proxy.
const UserHeader = "X-User-Id"

// Orchestrator is the set of operations the transport routes intents to.
type Orchestrator interface {
	Register(username string, sink gamemgr.Sink)
	Detach(username string, sink gamemgr.Sink)
	QueueNewMatch(ctx context.Context, username string, s gamemgr.Settings)
	JoinQueuedMatch(ctx context.Context, username, matchID string)
	LeaveQueue(ctx context.Context, username string)
	SendQueue(ctx context.Context, username string)
	SendQueueStatus(username string)
	StartGame(username string)
	PerformMove(username string, raw match.RawMove)
	PublishMessage(username, content string)
	ChatHistory(username string)
	Resign(username string)
	Snapshot(matchID string) (board.Description, catalog.Palette, bool)
}

// GuestCreator issues temporary accounts for visitors without a login.
type GuestCreator interface {
	CreateGuest(ctx context.Context, displayname string) (*accounts.Profile, error)
}

type Options struct {
	// Guests enables POST /guests when set.
	Guests GuestCreator

	OutboxSize     int
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadLimit      int64
	OriginPatterns []string
}

func DefaultOptions() Options {
	return Options{
		OutboxSize:   64,
		PingInterval: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		ReadLimit:    64 << 10,
	}
}

type Server struct {
	orch Orchestrator
	opts Options
}

func NewServer(orch Orchestrator, opts Options) *Server {
	d := DefaultOptions()
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = d.OutboxSize
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = d.PingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = d.WriteTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = d.ReadLimit
	}
	return &Server{orch: orch, opts: opts}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	mux.HandleFunc("GET /matches/{id}/board.png", s.serveBoard)
	if s.opts.Guests != nil {
		mux.HandleFunc("POST /guests", s.createGuest)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) serveBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	desc, palette, ok := s.orch.Snapshot(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flipped := r.URL.Query().Get("flip") == "1"
	png, err := render.PNG(r.Context(), desc, palette, flipped)
	if err != nil {
		obslog.L().Error("board_render_error", zap.String("match_id", id), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func usernameOf(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

// createGuest issues a temporary account. The returned username is what the
// auth proxy forwards as UserHeader afterwards.
func (s *Server) createGuest(w http.ResponseWriter, r *http.Request) {
	var req paintdto.GuestLogin
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Displayname)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxGuestNameRunes {
		http.Error(w, "displayname must be 1-20 characters", http.StatusBadRequest)
		return
	}
	prof, err := s.opts.Guests.CreateGuest(r.Context(), name)
	if err != nil {
		obslog.L().Error("guest_create_error", zap.Error(err))
		http.Error(w, "guest creation failed", http.StatusInternalServerError)
		return
	}
	obslog.L().Info("guest_create", zap.String("username", prof.Username))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(paintdto.GuestSession{
		Username:    prof.Username,
		Displayname: prof.Displayname,
		ELO:         prof.RoundedRating(),
	})
}
