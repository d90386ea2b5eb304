// Package match supervises a single paint chess game: board, clocks, chat and the
// final result.
package match

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/internal/obslog"
)

var (
	ErrFinished         = errors.New("match already finished")
	ErrMalformedMove    = errors.New("malformed move")
	ErrInvalidPromotion = board.ErrInvalidPromotion
	ErrNotParticipant   = errors.New("user is not a participant")
)

// Method is how a match ended.
type Method string

const (
	MethodCheckmate Method = "checkmate"
	MethodStalemate Method = "stalemate"
	MethodTimeout   Method = "timeout"
	MethodResign    Method = "resign"
	MethodAborted   Method = "aborted"
)

// Result is the outcome of a match. Winner is NoRole for draws and aborted matches.
type Result struct {
	Winner board.Role
	Method Method
}

// Rated reports whether the result should move ratings.
func (r Result) Rated() bool { return r.Method != MethodAborted }

// Outcome is the score of P1: 1 win, 0.5 draw, 0 loss.
func (r Result) Outcome() float64 {
	switch r.Winner {
	case board.P1:
		return 1
	case board.P2:
		return 0
	}
	return 0.5
}

// Player is the profile snapshot taken when the match was created.
type Player struct {
	Username    string
	Displayname string
	Rating      float64
}

// Meta describes who plays and for how long.
type Meta struct {
	ID            string
	P1            Player
	P2            Player
	SecsPerPlayer int
}

// Options tune timers and presentation. A zero TickInterval disables the internal
// ticker; callers then drive Tick themselves.
type Options struct {
	Palette      catalog.Palette
	TickInterval time.Duration
	StartTimeout time.Duration
	Now          func() time.Time
}

// DefaultOptions returns the production timer settings.
func DefaultOptions(p catalog.Palette) Options {
	return Options{Palette: p, TickInterval: 500 * time.Millisecond, StartTimeout: 60 * time.Second}
}

// RawMove is a move as submitted by a client.
type RawMove struct {
	From      string
	To        string
	Promotion string
	Username  string
}

// Match is safe for concurrent use.
type Match struct {
	mu sync.Mutex

	meta    Meta
	palette catalog.Palette
	board   *board.Board
	clocks  [2]clock

	completedTurns int
	joined         int
	started        bool
	chat           []Message

	now           func() time.Time
	createdAt     time.Time
	startDeadline time.Time
	endedAt       time.Time

	ended  bool
	result Result
	events chan Result
	done   chan struct{}
	stop   chan struct{}
}

// New creates the match and starts its timers.
func New(meta Meta, opts Options) *Match {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	budget := time.Duration(meta.SecsPerPlayer) * time.Second
	m := &Match{
		meta:    meta,
		palette: opts.Palette,
		board:   board.New(),
		clocks:  [2]clock{{left: budget}, {left: budget}},
		now:     now,
		events:  make(chan Result, 1),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	m.createdAt = now()
	if opts.StartTimeout > 0 {
		m.startDeadline = m.createdAt.Add(opts.StartTimeout)
	}
	if opts.TickInterval > 0 {
		go m.run(opts.TickInterval)
	}
	obslog.L().Info("match_create",
		zap.String("match_id", meta.ID),
		zap.String("p1", meta.P1.Username),
		zap.String("p2", meta.P2.Username),
		zap.Int("secs_per_player", meta.SecsPerPlayer),
		zap.String("palette", opts.Palette.Name),
	)
	return m
}

func (m *Match) run(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Tick(m.now())
		}
	}
}

func (m *Match) ID() string { return m.meta.ID }

// Meta returns the match metadata.
func (m *Match) Meta() Meta { return m.meta }

// Palette returns the colours chosen for this match.
func (m *Match) Palette() catalog.Palette { return m.palette }

// Users returns the usernames ordered p1, p2.
func (m *Match) Users() [2]string { return [2]string{m.meta.P1.Username, m.meta.P2.Username} }

// HasUser reports whether username plays in the match.
func (m *Match) HasUser(username string) bool { return m.RoleOf(username) != board.NoRole }

// RoleOf maps a username to its role, or NoRole.
func (m *Match) RoleOf(username string) board.Role {
	switch username {
	case "":
		return board.NoRole
	case m.meta.P1.Username:
		return board.P1
	case m.meta.P2.Username:
		return board.P2
	}
	return board.NoRole
}

// UserOf maps a role to its username.
func (m *Match) UserOf(r board.Role) string {
	switch r {
	case board.P1:
		return m.meta.P1.Username
	case board.P2:
		return m.meta.P2.Username
	}
	return ""
}

// JoinPlayer counts one more player as present.
func (m *Match) JoinPlayer() {
	m.mu.Lock()
	m.joined++
	m.mu.Unlock()
}

func (m *Match) JoinedPlayers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joined
}

func (m *Match) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
}

func (m *Match) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// CompletedTurns is the number of accepted moves.
func (m *Match) CompletedTurns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completedTurns
}

// Turn returns the role to move.
func (m *Match) Turn() board.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Turn()
}

// LegalMoves returns the legal moves of r on the current position.
func (m *Match) LegalMoves(r board.Role) board.LegalMoves {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.LegalMoves(r)
}

// Description snapshots the board.
func (m *Match) Description() board.Description {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Description()
}

// ProcessMove validates and applies a client move.
func (m *Match) ProcessMove(raw RawMove) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return ErrFinished
	}
	if raw.From == "" || raw.To == "" || raw.Username == "" {
		return ErrMalformedMove
	}
	promotion, err := board.ParsePromotion(raw.Promotion)
	if err != nil {
		return ErrInvalidPromotion
	}
	role := m.RoleOf(raw.Username)
	if role == board.NoRole {
		return ErrNotParticipant
	}
	mv := board.Move{From: board.Coord(raw.From), To: board.Coord(raw.To), Player: role, Promotion: promotion}
	if err := m.board.Apply(mv); err != nil {
		return err
	}

	m.completedTurns++
	m.toggleClocks(m.now())

	switch m.board.Status() {
	case board.StatusCheckmate:
		m.finishLocked(Result{Winner: role, Method: MethodCheckmate})
	case board.StatusStalemate:
		m.finishLocked(Result{Method: MethodStalemate})
	}
	return nil
}

// Resign ends the match in favour of the opponent of username.
func (m *Match) Resign(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return ErrFinished
	}
	role := m.RoleOf(username)
	if role == board.NoRole {
		return ErrNotParticipant
	}
	m.finishLocked(Result{Winner: role.Opponent(), Method: MethodResign})
	return nil
}

// Finish ends the match with res. Calls after the first are no-ops.
func (m *Match) Finish(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishLocked(res)
}

func (m *Match) finishLocked(res Result) {
	if m.ended {
		return
	}
	m.ended = true
	m.result = res
	m.endedAt = m.now()
	for i := range m.clocks {
		m.clocks[i].lastTick = time.Time{}
	}
	close(m.stop)
	m.events <- res
	close(m.events)
	close(m.done)
	obslog.L().Info("match_finish",
		zap.String("match_id", m.meta.ID),
		zap.String("winner", string(res.Winner)),
		zap.String("method", string(res.Method)),
		zap.Int("completed_turns", m.completedTurns),
	)
}

// Events yields the result once and is then closed.
func (m *Match) Events() <-chan Result { return m.events }

// Done is closed when the match has finished.
func (m *Match) Done() <-chan struct{} { return m.done }

// Ended reports whether the match finished, and how.
func (m *Match) Ended() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.ended
}

// Timing reports when the match was created and when it ended (zero while running).
func (m *Match) Timing() (created, ended time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createdAt, m.endedAt
}
