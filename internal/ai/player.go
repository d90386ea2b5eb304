// Package ai plays paint chess for synthetic accounts by picking random legal
// moves, with captures and enemy turf weighted up.
package ai

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// Actions is the part of the match orchestrator a player drives.
type Actions interface {
	StartGame(username string)
	PerformMove(username string, raw match.RawMove)
	PublishMessage(username, content string)
}

// Lines supplies chat text.
type Lines interface {
	Greeting() string
	RandomResponse() string
}

type Options struct {
	MaxThink   time.Duration
	ChatChance float64
	Weights    Weights
	InboxSize  int
	Seed       int64
}

// DefaultOptions match the live server.
func DefaultOptions() Options {
	return Options{
		MaxThink:   10 * time.Second,
		ChatChance: 0.05,
		Weights:    DefaultWeights,
		InboxSize:  64,
	}
}

// Player receives match events like a connected client and answers them from
// its own goroutine. It stops on game-ended or Close.
type Player struct {
	username string
	actions  Actions
	lines    Lines
	opts     Options
	rng      *rand.Rand

	inbox     chan paintdto.Event
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a player for username.
func New(actions Actions, username string, lines Lines, opts Options) *Player {
	if opts.InboxSize <= 0 {
		opts.InboxSize = 64
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := &Player{
		username: username,
		actions:  actions,
		lines:    lines,
		opts:     opts,
		rng:      rand.New(rand.NewSource(seed)),
		inbox:    make(chan paintdto.Event, opts.InboxSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Player) Username() string { return p.username }

// Send queues ev without blocking; events are dropped when the inbox is full.
func (p *Player) Send(ev paintdto.Event) {
	select {
	case <-p.stop:
		return
	default:
	}
	select {
	case p.inbox <- ev:
	default:
		obslog.L().Warn("ai_inbox_full", zap.String("username", p.username), zap.String("kind", ev.Kind))
	}
}

// Close stops the player. It is safe to call more than once.
func (p *Player) Close() {
	p.closeOnce.Do(func() { close(p.stop) })
}

// Done is closed once the player goroutine has returned.
func (p *Player) Done() <-chan struct{} { return p.done }

func (p *Player) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case ev := <-p.inbox:
			if !p.handle(ev) {
				p.Close()
				return
			}
		}
	}
}

// handle reacts to one event and reports whether the player should keep going.
func (p *Player) handle(ev paintdto.Event) bool {
	switch ev.Kind {
	case paintdto.KindFoundGame:
		p.actions.StartGame(p.username)
	case paintdto.KindGameStart:
		v, ok := ev.Payload.(paintdto.ClientView)
		if !ok {
			return true
		}
		if g := p.lines.Greeting(); g != "" {
			p.actions.PublishMessage(p.username, g)
		}
		return p.play(v)
	case paintdto.KindMovePerformed:
		v, ok := ev.Payload.(paintdto.ClientView)
		if !ok || v.Turn != v.OwnRole {
			return true
		}
		if p.rng.Float64() < p.opts.ChatChance {
			if line := p.lines.RandomResponse(); line != "" {
				p.actions.PublishMessage(p.username, line)
			}
		}
		return p.play(v)
	case paintdto.KindGameEnded:
		obslog.L().Debug("ai_stop", zap.String("username", p.username))
		return false
	}
	return true
}

// play thinks for a while and submits a move when v says it is our turn.
func (p *Player) play(v paintdto.ClientView) bool {
	if v.Turn != v.OwnRole {
		return true
	}
	c, err := SelectCandidate(Candidates(v, p.opts.Weights), p.rng)
	if err != nil {
		obslog.L().Debug("ai_no_move", zap.String("username", p.username), zap.Error(err))
		return true
	}
	if p.opts.MaxThink > 0 {
		t := time.NewTimer(time.Duration(p.rng.Int63n(int64(p.opts.MaxThink))))
		select {
		case <-p.stop:
			t.Stop()
			return false
		case <-t.C:
		}
	}
	p.actions.PerformMove(p.username, match.RawMove{From: c.From, To: c.To})
	return true
}
